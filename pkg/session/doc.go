/*
Package session implements session management and persistence orchestration.

It serializes every read-modify-write of a user's navigation session. A local,
reference-counted mutex per user guards a single process; an optional
DistributedLocker extends the guarantee across replicas sharing one store.
*/
package session
