/*
Package dsl provides a Go DSL for programmatically constructing navigation graphs.

It lets developers define screens and the buttons they advertise with a fluent
builder instead of relying on external YAML files. This is useful for the
built-in report graph, unit tests and IDE autocompletion.

Example usage:

	b := dsl.New("HOME")

	b.Screen("HOME").
		Body("# Welcome").
		NoBack().
		Forward("MENU").Caption("Continue")

	b.Screen("MENU").
		Body("Pick a topic").
		ReturnBack("HOME").
		AskQuestion("ASK")

	b.Screen("ASK").
		Input().
		Body("Type your question").
		Back("MENU").
		FreeText("ANSWER")

	b.Screen("ANSWER").
		Answer().
		Body("{{.answer}}").
		Back("MENU")

	graph, err := b.Build() // validated registry, transition table and content
*/
package dsl
