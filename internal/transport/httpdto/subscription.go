package httpdto

// RegisterSubscriptionRequest mirrors the browser PushSubscription shape.
type RegisterSubscriptionRequest struct {
	Endpoint string           `json:"endpoint" binding:"required,url"`
	Keys     SubscriptionKeys `json:"keys" binding:"required"`
}

type SubscriptionKeys struct {
	P256dh string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
}

type SubscriptionResponse struct {
	ID       int64  `json:"id"`
	Endpoint string `json:"endpoint"`
}

type VAPIDKeyResponse struct {
	PublicKey string `json:"public_key"`
}

type PreferenceResponse struct {
	WorkspaceID       int64    `json:"workspace_id"`
	UserID            int64    `json:"user_id"`
	WebPushEnabled    bool     `json:"web_push_enabled"`
	SlackEnabled      bool     `json:"slack_enabled"`
	EnabledEventTypes []string `json:"enabled_event_types"`
}
