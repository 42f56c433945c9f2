package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/events"
)

// Variable is one key of the rendering payload. A nil Value is kept as null.
type Variable struct {
	Key   string
	Value *string
}

// Variables is the ordered payload the client renders a notification from.
type Variables struct {
	items []Variable
	index map[string]int
}

func (v *Variables) add(key string, value *string) *Variables {
	if v.index == nil {
		v.index = make(map[string]int)
	}
	if i, ok := v.index[key]; ok {
		v.items[i].Value = value
		return v
	}
	v.index[key] = len(v.items)
	v.items = append(v.items, Variable{Key: key, Value: value})
	return v
}

func (v Variables) Items() []Variable {
	out := make([]Variable, len(v.items))
	copy(out, v.items)
	return out
}

// Get returns the value stored under key and whether the key exists
func (v Variables) Get(key string) (*string, bool) {
	i, ok := v.index[key]
	if !ok {
		return nil, false
	}
	return v.items[i].Value, true
}

func (v Variables) Len() int {
	return len(v.items)
}

func (v Variables) ToArray() []Variable {
	return v.Items()
}

func VariablesFromRawData(items []Variable) Variables {
	var v Variables
	for _, it := range items {
		v.add(it.Key, it.Value)
	}
	return v
}

func (v Variables) Equals(other Variables) bool {
	if len(v.items) != len(other.items) {
		return false
	}
	for i, it := range v.items {
		o := other.items[i]
		if it.Key != o.Key || !sameValue(it.Value, o.Value) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the variables as an object in insertion order
func (v Variables) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range v.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(it.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(it.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the source document
func (v *Variables) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("variables: expected object, got %v", tok)
	}
	*v = Variables{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("variables: expected key, got %v", tok)
		}
		var value *string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("variables: value of %q: %w", key, err)
		}
		v.add(key, value)
	}
	_, err = dec.Token()
	return err
}

func (v Variables) String() string {
	b, _ := v.MarshalJSON()
	return string(b)
}

func VariablesFromAssignedToFollowup(e events.AssignedToFollowup) Variables {
	var v Variables
	if ev := e.Event(); ev != nil {
		v.add("event_id", str(ev.UUID().String()))
		v.add("event_title", str(ev.Title()))
		v.add("event_type", str(ev.Type()))
	}
	return v
}

func VariablesFromImportFinished(e events.ImportFinished) Variables {
	var v Variables
	job := e.ImportJob()
	if job == nil {
		return v
	}
	v.add("import_job_id", str(job.UUID().String()))
	v.add("import_type", str(job.Type()))
	var fileName *string
	if f := job.SourceFile(); f != nil {
		fileName = str(f.OriginalName)
	}
	v.add("file_name", fileName)
	v.add("entries", str(strconv.Itoa(job.Entries())))
	v.add("errors", str(strconv.Itoa(job.Errors())))
	return v
}

func VariablesFromIntegrationErrorOccurred(e events.IntegrationErrorOccurred) Variables {
	var v Variables
	integration := e.Integration()
	if integration == nil {
		return v
	}
	status := integration.Status()
	v.add("integration_id", str(integration.UUID().String()))
	v.add("integration_service", str(integration.Service()))
	v.add("integration_status", str(status.Status))
	v.add("integration_status_info", status.AdditionalInfo)
	return v
}

func VariablesFromAssignedToLead(e events.AssignedToLead) Variables {
	var v Variables
	if lead := e.Lead(); lead != nil {
		v.add("entity_id", str(lead.UUID().String()))
		v.add("entity_title", str(lead.Title()))
	}
	var fullName, picture *string
	if createdBy := e.CreatedBy(); createdBy != nil {
		fullName = str(createdBy.DisplayName())
		picture = profilePictureURL(createdBy.ProfilePicture())
	}
	v.add("user_full_name", fullName)
	v.add("user_profile_picture", picture)
	var userID *string
	if target := e.Target(); target != nil && target.User() != nil {
		userID = str(target.User().UUID().String())
	}
	v.add("user_id", userID)
	return v
}

func VariablesFromSequenceContactReplied(e events.SequenceContactReplied) Variables {
	var v Variables
	sc := e.PerformedOn()
	if sc == nil {
		return v
	}
	v.add("sequence_contact_id", str(sc.UUID().String()))
	var contactID, contactName, contactPicture *string
	if contact := sc.Contact(); contact != nil {
		contactID = str(contact.UUID().String())
		contactName = str(contact.DisplayName())
		contactPicture = fileURL(contact.PhotoFile())
	}
	v.add("contact_id", contactID)
	v.add("contact_full_name", contactName)
	v.add("contact_profile_picture", contactPicture)
	var sequenceID, sequenceName *string
	if seq := sc.Sequence(); seq != nil {
		sequenceID = str(seq.UUID().String())
		sequenceName = str(seq.Name())
	}
	v.add("sequence_id", sequenceID)
	v.add("sequence_name", sequenceName)
	return v
}

func VariablesFromSequenceStopped(e events.SequenceStopped) Variables {
	var v Variables
	if seq := e.PerformedOn(); seq != nil {
		v.add("sequence_id", str(seq.UUID().String()))
		v.add("sequence_name", str(seq.Name()))
	}
	return v
}

func profilePictureURL(p *contracts.ProfilePicture) *string {
	if p == nil {
		return nil
	}
	return fileURL(p.File)
}

func fileURL(f *contracts.File) *string {
	if f == nil || f.DirectURL == nil {
		return nil
	}
	return str(*f.DirectURL)
}

func str(s string) *string {
	return &s
}

func sameValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
