/*
Package domain contains the core domain models of the report navigator.

It defines the entities the navigation engine reasons about: Screens and the
Actions they advertise, per-user Sessions, and the render structures handed to
the chat transport. The package is kept pure and free of I/O, persistence and
transport concerns, following Hexagonal Architecture principles.

# Key Entities

  - Screen: one navigable unit of content with a fixed, ordered set of Actions.
  - Action: a labeled user event (button or free text) and the screen it leads to.
  - Session: the per-user pointer to the current screen plus transient mode flags.
  - RenderInstruction: what the engine asks the dispatcher to show.
  - Payload: the transport-agnostic outbound message (text + buttons).
*/
package domain
