package ecs

// System represents a behavior that operates on entities with specific components.
// User-defined systems should implement this interface and can include Query fields
// for accessing entities, as well as custom state fields that persist between ticks.
//
// The scheduler derives the system's access descriptor from its Query and
// Singleton fields at registration time. Query and Singleton fields declare
// write access by default; the `ecs:"read"` struct tag declares read-only
// access instead.
type System interface {
	Execute(frame *UpdateFrame)
}

// AccessDeclarer is implemented by systems that touch storage outside their
// Query and Singleton fields (for example through frame.Storage directly).
// The declared access is merged with the derived access before scheduling.
type AccessDeclarer interface {
	DeclaredAccess() *Access
}

// accessProvider is implemented by Query and Singleton fields so registration
// can collect the partitions a system reaches through them.
type accessProvider interface {
	declaredAccess() *Access
}

// frameRefresher is implemented by Query fields; the executor refreshes each
// query's cache immediately before its system runs.
type frameRefresher interface {
	refresh()
}
