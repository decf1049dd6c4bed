/*
Package reportnav is a data-driven menu navigator for conversational genetic reports.

A report is modelled as a graph of screens. Each screen shows one piece of content
and advertises the buttons the user may press; a transition table derived from
those buttons decides where every press leads. The package keeps one navigation
pointer per user, serializes concurrent presses from the same user and renders the
resulting screen into a transport-agnostic payload (text plus buttons).

# Concept

The Bot wires together the pieces found under pkg/:

  - pkg/registry and pkg/transition hold the immutable graph.
  - pkg/session stores the per-user pointer behind a SessionStore port.
  - internal/runtime advances sessions and renders screens.

Transports (the HTTP adapter, the terminal chat, a messenger webhook) decode user
input into a domain.Inbound and send back the Reply payload.

# Usage

	bot, err := reportnav.New()
	if err != nil {
		log.Fatal(err)
	}

	reply, err := bot.Start(ctx, "user-42")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply.Payload.Text)

	reply, err = bot.Handle(ctx, domain.Inbound{UserID: "user-42", Label: domain.ActionForward})
	if err != nil {
		log.Fatal(err)
	}
	for _, b := range reply.Payload.Buttons {
		fmt.Println(b.Caption, b.Data)
	}

Graphs other than the built-in report can be declared with pkg/dsl or loaded from
YAML with pkg/adapters/graphfile and passed through WithGraph.
*/
package reportnav
