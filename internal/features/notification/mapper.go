package notification

import "crm-notifications/internal/common/models"

type ApiSource struct {
	Type string `json:"type"`
	UUID string `json:"uuid"`
}

type ApiUser struct {
	ID             string  `json:"id"`
	DisplayName    string  `json:"display_name"`
	ProfilePicture *string `json:"profile_picture"`
}

// ApiNotification is the wire form of a notification. Timestamps are unix
// seconds.
type ApiNotification struct {
	ID          string    `json:"id"`
	Source      ApiSource `json:"source"`
	EventType   string    `json:"event_type"`
	Variables   Variables `json:"variables"`
	CreatedBy   *ApiUser  `json:"created_by"`
	CreatedAt   int64     `json:"created_at"`
	DisplayedAt *int64    `json:"displayed_at"`
	ReadAt      *int64    `json:"read_at"`
}

type ApiNotificationList struct {
	CurrentPage int               `json:"current_page"`
	LastPage    int               `json:"last_page"`
	PerPage     int               `json:"per_page"`
	Total       int64             `json:"total"`
	Data        []ApiNotification `json:"data"`
}

type ApiCount struct {
	Count int64 `json:"count"`
}

func ToApiNotification(n *Notification) ApiNotification {
	out := ApiNotification{
		ID:        n.ID().String(),
		Source:    ApiSource{Type: string(n.Source().Type()), UUID: n.Source().UUID()},
		EventType: n.EventType().String(),
		Variables: n.Variables(),
		CreatedAt: n.CreatedAt().Unix(),
	}
	if u := n.CreatedBy(); u != nil {
		out.CreatedBy = &ApiUser{
			ID:             u.UUID().String(),
			DisplayName:    u.DisplayName(),
			ProfilePicture: profilePictureURL(u.ProfilePicture()),
		}
	}
	if t := n.DisplayedAt(); t != nil {
		ts := t.Unix()
		out.DisplayedAt = &ts
	}
	if t := n.ReadAt(); t != nil {
		ts := t.Unix()
		out.ReadAt = &ts
	}
	return out
}

func ToApiNotificationList(p *models.Paginator[*Notification]) ApiNotificationList {
	data := make([]ApiNotification, 0, len(p.Items()))
	for _, n := range p.Items() {
		data = append(data, ToApiNotification(n))
	}
	return ApiNotificationList{
		CurrentPage: p.Page(),
		LastPage:    p.LastPage(),
		PerPage:     p.PerPage(),
		Total:       p.Total(),
		Data:        data,
	}
}
