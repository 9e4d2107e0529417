package models

import (
	"encoding/json"
	"time"
)

type PlatformSetting struct {
	ID                   string          `json:"id"`
	SettingKey           string          `json:"setting_key"`
	SettingName          string          `json:"setting_name"`
	SettingDescription   string          `json:"setting_description,omitempty"`
	SettingValue         json.RawMessage `json:"setting_value"`
	DefaultValue         json.RawMessage `json:"default_value"`
	SettingType          string          `json:"setting_type"`
	MinValue             json.RawMessage `json:"min_value,omitempty"`
	MaxValue             json.RawMessage `json:"max_value,omitempty"`
	AllowedValues        []any           `json:"allowed_values,omitempty"`
	RequiresConfirmation bool            `json:"requires_confirmation"`
	IsSensitive          bool            `json:"is_sensitive"`
	IsEditable           bool            `json:"is_editable"`
	UpdatedBy            *string         `json:"updated_by,omitempty"`
	UpdatedAt            *time.Time      `json:"updated_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

type SettingsGroup struct {
	CommissionSettings   []PlatformSetting `json:"commission_settings"`
	GeneralSettings      []PlatformSetting `json:"general_settings"`
	PaymentSettings      []PlatformSetting `json:"payment_settings"`
	NotificationSettings []PlatformSetting `json:"notification_settings"`
}

// SettingConfirmation changes a critical setting; the admin password is
// checked by the backend.
type SettingConfirmation struct {
	SettingKey string          `json:"setting_key" validate:"required"`
	NewValue   json.RawMessage `json:"new_value" validate:"required"`
	Password   string          `json:"password" validate:"required"`
	Reason     string          `json:"reason,omitempty" validate:"max=500"`
}

type AuditLogEntry struct {
	ID            string          `json:"id"`
	SettingKey    string          `json:"setting_key"`
	OldValue      json.RawMessage `json:"old_value,omitempty"`
	NewValue      json.RawMessage `json:"new_value"`
	ChangeReason  *string         `json:"change_reason,omitempty"`
	ChangedBy     string          `json:"changed_by"`
	ChangedByName *string         `json:"changed_by_name,omitempty"`
	IPAddress     *string         `json:"ip_address,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
