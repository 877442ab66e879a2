package output

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	domainErrors "github.com/igoakulov/tokker/internal/domain/errors"
)

// Google auth guidance, printed verbatim when a Google tokenization call
// fails. The block replaces the raw error because the underlying SDK
// messages are opaque; header first, then the guide link, then the steps.
const (
	GoogleAuthHeader = "Google models need Google Cloud authentication."
	GoogleAuthGuide  = "Guide: https://cloud.google.com/docs/authentication/set-up-adc"
)

// GoogleAuthSteps lists the setup steps appended to the guidance block.
var GoogleAuthSteps = []string{
	"  1. Install the gcloud CLI: https://cloud.google.com/sdk/docs/install",
	"  2. Run: gcloud auth application-default login",
	"  3. Set GOOGLE_CLOUD_PROJECT to your project id",
	"  4. Enable the Vertex AI API for that project",
}

// googleProviderName matches the display name the Google backend registers
// under. Presentation code keys on the name rather than importing the
// backend package.
const googleProviderName = "Google"

// providerHints maps a provider display name to the one-line description of
// what model names it serves. Shown under a model-not-found error so the
// user can tell which family the name should have come from.
var providerHints = map[string]string{
	"OpenAI":      "OpenAI: built-in encodings such as cl100k_base, o200k_base, p50k_base",
	"Google":      "Google: Gemini model names; needs Google Cloud auth (see 'tok --models')",
	"HuggingFace": "HuggingFace: any hub repo id with a tokenizer.json, downloaded on first use",
}

// ErrorLines maps a failure to the lines printed on stderr. Classification
// works outside-in: provider runtime failures first, then the structured
// registry errors, then filesystem and validation fallbacks.
func ErrorLines(err error) []string {
	if err == nil {
		return nil
	}

	var runtimeErr *domainErrors.ProviderRuntimeError
	if domainErrors.As(err, &runtimeErr) {
		if runtimeErr.Provider == googleProviderName {
			lines := []string{GoogleAuthHeader, GoogleAuthGuide}
			return append(lines, GoogleAuthSteps...)
		}
		return []string{fmt.Sprintf("Tokenization failed with provider '%s': %v",
			runtimeErr.Provider, runtimeErr.Err)}
	}

	var notFound *domainErrors.ModelNotFoundError
	if domainErrors.As(err, &notFound) {
		return modelNotFoundLines(notFound)
	}

	if domainErrors.Is(err, ErrUnknownFormat) {
		return []string{
			fmt.Sprintf("%v", err),
			"Valid formats: json, plain, count, pivot",
		}
	}

	if domainErrors.Is(err, domainErrors.ErrTextRequired) {
		return []string{"No text to tokenize. Pass it as an argument or pipe it on stdin."}
	}

	if domainErrors.Is(err, domainErrors.ErrHistoryDisabled) {
		return []string{"History is disabled. Enable it in ~/.tokker/config.yaml under history.enabled."}
	}

	var tokkerErr *domainErrors.TokkerError
	if domainErrors.As(err, &tokkerErr) && tokkerErr.Code == domainErrors.CodeConfiguration {
		return []string{fmt.Sprintf("Configuration error: %v", err)}
	}

	var pathErr *fs.PathError
	if domainErrors.As(err, &pathErr) {
		return []string{fmt.Sprintf("File error: %v", pathErr)}
	}

	return []string{fmt.Sprintf("Error: %v", err)}
}

// modelNotFoundLines renders the not-found message with one hint line per
// installed provider.
func modelNotFoundLines(notFound *domainErrors.ModelNotFoundError) []string {
	installed := "none"
	if len(notFound.Providers) > 0 {
		installed = strings.Join(notFound.Providers, ", ")
	}

	lines := []string{fmt.Sprintf("Model '%s' not found with installed providers: %s",
		notFound.Model, installed)}
	for _, name := range notFound.Providers {
		if hint, ok := providerHints[name]; ok {
			lines = append(lines, "  • "+hint)
		}
	}
	return lines
}

// PrintErrorLines writes each mapped line to w. Used by the command runner
// on the fatal path.
func PrintErrorLines(w io.Writer, err error) {
	for _, line := range ErrorLines(err) {
		fmt.Fprintln(w, line)
	}
}
