package models

import "time"

// RegencyType enumerates the kinds of second-level regions.
type RegencyType string

const (
	RegencyTypeKabupaten RegencyType = "kabupaten"
	RegencyTypeKota      RegencyType = "kota"
)

// Valid reports whether t is one of the known regency types.
func (t RegencyType) Valid() bool {
	return t == RegencyTypeKabupaten || t == RegencyTypeKota
}

// Province represents a province in Indonesia.
// RegencyCount is computed from the regencies table and never stored.
type Province struct {
	ID           int       `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	CreatedBy    int       `db:"created_by" json:"createdBy"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
	RegencyCount int       `db:"regency_count" json:"regencyCount"`
}

// Regency represents a regency (kabupaten) or city (kota) owned by a province.
// ProvinceName is joined from provinces for display.
type Regency struct {
	ID           int         `db:"id" json:"id"`
	ProvinceID   int         `db:"province_id" json:"provinceId"`
	Code         string      `db:"code" json:"code"`
	Name         string      `db:"name" json:"name"`
	Type         RegencyType `db:"type" json:"type"`
	CreatedBy    int         `db:"created_by" json:"createdBy"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
	ProvinceName string      `db:"province_name" json:"provinceName"`
}

// ProvinceUpdate carries the fields of a partial province update; nil fields are left untouched.
type ProvinceUpdate struct {
	Code *string `json:"code"`
	Name *string `json:"name"`
}

// Empty reports whether no field is set.
func (u ProvinceUpdate) Empty() bool {
	return u.Code == nil && u.Name == nil
}

// RegencyUpdate carries the fields of a partial regency update. The owning
// province cannot be changed.
type RegencyUpdate struct {
	Code *string      `json:"code"`
	Name *string      `json:"name"`
	Type *RegencyType `json:"type"`
}

// Empty reports whether no field is set.
func (u RegencyUpdate) Empty() bool {
	return u.Code == nil && u.Name == nil && u.Type == nil
}

// ProvinceResponse is the public read-only shape of a province.
type ProvinceResponse struct {
	ID           int    `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	RegencyCount int    `json:"regencyCount"`
}

// RegencyResponse is the public read-only shape of a regency.
type RegencyResponse struct {
	ID           int         `json:"id"`
	ProvinceID   int         `json:"provinceId"`
	ProvinceName string      `json:"provinceName,omitempty"`
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Type         RegencyType `json:"type"`
}

// ToResponse converts p to its public shape.
func (p Province) ToResponse() ProvinceResponse {
	return ProvinceResponse{ID: p.ID, Code: p.Code, Name: p.Name, RegencyCount: p.RegencyCount}
}

// ToResponse converts r to its public shape.
func (r Regency) ToResponse() RegencyResponse {
	return RegencyResponse{
		ID:           r.ID,
		ProvinceID:   r.ProvinceID,
		ProvinceName: r.ProvinceName,
		Code:         r.Code,
		Name:         r.Name,
		Type:         r.Type,
	}
}
