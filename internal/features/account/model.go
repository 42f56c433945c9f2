package account

import (
	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/models"
)

// UserCompanyAccount is a user's membership in a company account as stored
// in the user_company_accounts collection
type UserCompanyAccount struct {
	ID                models.ID `bson:"_id" json:"id"`
	UserID            models.ID `bson:"user_id" json:"user_id"`
	CompanyAccountID  models.ID `bson:"company_account_id" json:"company_account_id"`
	DisplayName       string    `bson:"display_name" json:"display_name"`
	ProfilePictureURL *string   `bson:"profile_picture_url,omitempty" json:"profile_picture_url,omitempty"`
}

// Contract exposes the membership through the read-only views other
// contexts consume
func (a *UserCompanyAccount) Contract() contracts.UserCompanyAccount {
	user := &contracts.UserRecord{ID: a.UserID, Name: a.DisplayName}
	if a.ProfilePictureURL != nil {
		user.Picture = &contracts.ProfilePicture{File: &contracts.File{DirectURL: a.ProfilePictureURL}}
	}
	return &contracts.UserCompanyAccountRecord{
		ID:      a.ID,
		Member:  user,
		Company: &contracts.CompanyAccountRecord{ID: a.CompanyAccountID},
	}
}
