package types

// Issue kinds emitted by the analyzers
const (
	KindSyntaxError     = "syntax_error"
	KindAnalysisError   = "analysis_error"
	KindMissingDocs     = "missing_docstring"
	KindBareExcept      = "bare_except"
	KindHighComplexity  = "high_complexity"
	KindTooManyArgs     = "too_many_arguments"
	KindMissingTypeHint = "missing_type_hint"
	KindWildcardImport  = "wildcard_import"
	KindMissingMain     = "missing_main_guard"

	KindDangerousEval   = "dangerous_eval"
	KindDeserialization = "insecure_deserialization"
	KindShellInjection  = "shell_injection"
	KindHardcodedSecret = "hardcoded_secret"

	KindPotentialXSS     = "potential_xss"
	KindDocumentWrite    = "document_write"
	KindExcessiveLogging = "excessive_logging"
	KindUseLetConst      = "use_let_const"
	KindStrictEquality   = "use_strict_equality"

	KindUnquotedVariable = "unquoted_variable"
	KindDangerousRm      = "dangerous_rm"
	KindCurlPipeBash     = "curl_pipe_bash"

	KindSQLInjection = "sql_injection"
	KindSelectStar   = "select_star"
)

// Pattern kinds produced by synthesis
const (
	PatternSecurity          = "security_vulnerabilities"
	PatternHighComplexity    = "high_code_complexity"
	PatternPoorErrorHandling = "poor_error_handling"
	PatternCriticalIssues    = "critical_code_issues"
	PatternQualityConcerns   = "code_quality_concerns"
)

var securityKinds = map[string]bool{
	KindDangerousEval:   true,
	KindShellInjection:  true,
	KindSQLInjection:    true,
	KindPotentialXSS:    true,
	KindHardcodedSecret: true,
	KindDeserialization: true,
	KindDangerousRm:     true,
	KindCurlPipeBash:    true,
}

// IsSecurityKind reports whether kind counts toward security_vulnerabilities
func IsSecurityKind(kind string) bool {
	return securityKinds[kind]
}

// RuleKinds lists every issue kind a rule can emit, in catalog order.
// syntax_error and analysis_error are not rules and cannot be disabled.
func RuleKinds() []string {
	return []string{
		KindMissingDocs, KindBareExcept, KindHighComplexity, KindTooManyArgs,
		KindMissingTypeHint, KindWildcardImport, KindMissingMain,
		KindDangerousEval, KindDeserialization, KindShellInjection, KindHardcodedSecret,
		KindPotentialXSS, KindDocumentWrite, KindExcessiveLogging, KindUseLetConst,
		KindStrictEquality, KindUnquotedVariable, KindDangerousRm, KindCurlPipeBash,
		KindSQLInjection, KindSelectStar,
	}
}
