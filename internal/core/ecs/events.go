package ecs

// Lifecycle notifications emitted on the manager's world queue. They are
// delivered at the end of the Update that produced them, together with
// whatever systems emitted since the previous Update.

// EntityCommitted is emitted when an entity joins the live set.
type EntityCommitted struct {
	ID   EntityID
	Tags []string
}

// EntityPurged is emitted when an entity is removed from every index.
type EntityPurged struct {
	ID   EntityID
	Tags []string
}
