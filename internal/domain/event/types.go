package event

// Event job names follow the format: domain.action

// Log events
const (
	NameLogCreated = "log.created"
	NameLogDeleted = "log.deleted"
)

// Adjustment events
const (
	NameAdjustmentCreated   = "adjustment.created"
	NameAdjustmentCompleted = "adjustment.completed"
)

// Member events
const (
	NameMemberJoined      = "member.joined"
	NameMemberLeft        = "member.left"
	NameMemberRoleChanged = "member.role_changed"
)

// Workspace events
const (
	NameWorkspaceDeleted = "workspace.deleted"
)

// Invitation events
const (
	NameInvitationCreated = "invitation.created"
)

// Aggregate type constants
const (
	AggregateTypeLog        = "log"
	AggregateTypeAdjustment = "adjustment"
	AggregateTypeMember     = "member"
	AggregateTypeWorkspace  = "workspace"
	AggregateTypeInvitation = "invitation"
)
