package model

import "github.com/dukerupert/kidscoin/internal/recurrence"

// Credentials cover both login surfaces: parents send an email and password,
// children a username and 4-digit PIN.
type Credentials struct {
	Identifier string `json:"emailOrUsername" validate:"required"`
	Secret     string `json:"password" validate:"required"`
}

type Registration struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	FullName   string `json:"fullName" validate:"required"`
	FamilyName string `json:"familyName" validate:"required"`
}

type NewTask struct {
	Title       string           `validate:"required"`
	Description string
	CoinValue   int              `validate:"gt=0"`
	XPValue     int              `validate:"gt=0"`
	Category    Category         `validate:"category"`
	ChildrenIDs []string         `validate:"min=1,dive,required"`
	Recurrence  *recurrence.Rule `validate:"-"`
}

type NewReward struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	CoinCost    int    `json:"coinCost" validate:"gt=0"`
}

type NewChild struct {
	FullName  string `json:"fullName" validate:"required"`
	Username  string `json:"username" validate:"required,min=3,username"`
	Age       int    `json:"age" validate:"gte=1"`
	PIN       string `json:"pin" validate:"required,len=4,numeric"`
	AvatarURL string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// AuthResponse is what login and registration return.
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
	User         User   `json:"user"`
}
