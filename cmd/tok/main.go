// Tokker CLI entry point
//
// Tokker (tok) shows text the way language models see it. It tokenizes
// text with real model vocabularies across OpenAI, Google, and
// HuggingFace backends.
package main

import "github.com/igoakulov/tokker/internal/presentation/cli/commands"

func main() {
	commands.Execute()
}
