package connectors

import "fmt"

// Capability-specific defaults for the optional auxiliary fields.
const (
	DefaultDocFormat      = "markdown"
	DefaultOptimizeTarget = "performance"
)

// The prompt builders translate the capability envelopes into the single
// chat prompt every vendor receives. Wording follows the original system so
// responses keep the code-block-plus-prose shape splitResult expects.

func codePrompt(req CodeRequest) string {
	framework := ""
	if req.Framework != "" {
		framework = fmt.Sprintf(" using the %s framework", req.Framework)
	}
	return fmt.Sprintf("Generate %s code%s that meets these requirements:\n%s",
		req.Language, framework, req.Prompt)
}

func docPrompt(req DocRequest) string {
	format := req.Format
	if format == "" {
		format = DefaultDocFormat
	}
	return fmt.Sprintf("Generate comprehensive documentation in %s format for the following %s code:\n```%s\n%s\n```\n\n"+
		"Include:\n1. Overview of what the code does\n2. Explanation of key functions and classes\n3. Usage examples\n4. Parameters and return values\n5. Any dependencies or requirements",
		format, req.Language, req.Language, req.Code)
}

func testPrompt(req TestRequest) string {
	framework := ""
	if req.Framework != "" {
		framework = fmt.Sprintf(" using %s", req.Framework)
	}
	return fmt.Sprintf("Generate comprehensive test cases%s for the following %s code:\n```%s\n%s\n```\n\n"+
		"Include:\n1. Unit tests for all functions and methods\n2. Edge case testing\n3. Integration tests if applicable\n4. Test setup and teardown code",
		framework, req.Language, req.Language, req.Code)
}

func bugFixPrompt(req BugFixRequest) string {
	return fmt.Sprintf("Fix the bugs in the following %s code based on the error message:\n\nError: %s\n\nCode:\n```%s\n%s\n```\n\n"+
		"Provide:\n1. The fixed code\n2. An explanation of what was wrong\n3. How the fix resolves the issue",
		req.Language, req.ErrorMessage, req.Language, req.Code)
}

func optimizePrompt(req OptimizeRequest) string {
	target := req.Target
	if target == "" {
		target = DefaultOptimizeTarget
	}
	return fmt.Sprintf("Optimize the following %s code for %s:\n```%s\n%s\n```\n\n"+
		"Provide:\n1. The optimized code\n2. An explanation of the optimizations made\n3. The expected improvements in %s",
		req.Language, target, req.Language, req.Code, target)
}
