/*
Package ports defines the driven ports (interfaces) of the report navigator.

These interfaces decouple the navigation core from external collaborators,
allowing the engine to work with various session backends, content stores,
question-answering services and rate limiters.

# Key Interfaces

  - SessionStore: persists the per-user Session (Memory, Redis).
  - DistributedLocker: per-user mutual exclusion across replicas.
  - ContentResolver: resolves content references into displayable text.
  - Answerer: answers free-text questions captured by the engine.
  - RateLimiter: bounds how often a user may submit free text.
*/
package ports
