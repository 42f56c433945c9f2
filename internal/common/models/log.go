package models

import "time"

// Log is a row of the logs collection written by the logger's DB sink
type Log struct {
	ApplicationID string         `bson:"application_id" json:"application_id"`
	Message       string         `bson:"message" json:"message"`
	LogLevelId    int            `bson:"log_level_id" json:"log_level_id"`
	Caller        string         `bson:"caller,omitempty" json:"caller,omitempty"`
	IpAddress     string         `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	Fields        map[string]any `bson:"fields,omitempty" json:"fields,omitempty"`
	CreatedOnUtc  time.Time      `bson:"created_on_utc" json:"created_on_utc"`
}
