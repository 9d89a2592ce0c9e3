package landing

import (
	"fmt"

	"payshare-notifier/internal/domain/event"
)

// Landing is the in-app deep link attached to a notification. Computed
// here, persisted elsewhere.
type Landing struct {
	URL        string
	EntityID   int64
	EntityType string
}

// Resolver builds deep links from the injected application base URL.
type Resolver struct {
	baseURL string
}

func NewResolver(baseURL string) *Resolver {
	return &Resolver{baseURL: baseURL}
}

// Resolve maps one event to the place the notification should open.
func (r *Resolver) Resolve(name string, payload event.Payload) Landing {
	workspaceRoot := r.workspaceURL(event.WorkspaceOf(payload))

	switch name {
	case event.NameLogCreated, event.NameLogDeleted:
		p, ok := payload.(event.LogPayload)
		if !ok {
			return Landing{URL: workspaceRoot}
		}
		return Landing{URL: workspaceRoot, EntityID: p.LogID, EntityType: "log"}
	case event.NameAdjustmentCreated, event.NameAdjustmentCompleted:
		p, ok := payload.(event.AdjustmentPayload)
		if !ok {
			return Landing{URL: workspaceRoot}
		}
		return Landing{
			URL:        fmt.Sprintf("%s/adjustment/%d", workspaceRoot, p.AdjustmentID),
			EntityID:   p.AdjustmentID,
			EntityType: "adjustment",
		}
	case event.NameMemberJoined, event.NameMemberLeft, event.NameMemberRoleChanged:
		return Landing{URL: workspaceRoot + "/settings", EntityType: "member"}
	case event.NameWorkspaceDeleted:
		// The workspace is gone, send the user home.
		return Landing{URL: r.baseURL}
	}
	return Landing{URL: workspaceRoot}
}

func (r *Resolver) workspaceURL(workspaceID int64) string {
	return fmt.Sprintf("%s/workspace/%d", r.baseURL, workspaceID)
}
