package request

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
)

// Category identifies the requester kind and therefore the Detail variant
// and policy that apply.
type Category string

const (
	CategoryOwner      Category = "owner"
	CategoryTenant     Category = "tenant"
	CategoryHHOCompany Category = "hho-company"
	CategoryHHOOwner   Category = "hho-owner"
)

// Kind is the case type of a request. Renewals extend an existing occupancy
// and reference the originating move-in through the prior-request link.
type Kind string

const (
	KindMoveIn  Kind = "move-in"
	KindMoveOut Kind = "move-out"
	KindRenewal Kind = "account-renewal"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindMoveIn, KindMoveOut, KindRenewal:
		return true
	}
	return false
}

// Field names the category payload attributes as they travel over the wire
// and appear in policy rules.
type Field string

const (
	FieldEmail              Field = "email"
	FieldPhone              Field = "phone"
	FieldMoveDate           Field = "move_date"
	FieldLeaseStart         Field = "lease_start"
	FieldLeaseEnd           Field = "lease_end"
	FieldContractNumber     Field = "contract_number"
	FieldCompanyName        Field = "company_name"
	FieldTradeLicenseNumber Field = "trade_license_number"
	FieldTradeLicenseExpiry Field = "trade_license_expiry"
	FieldPermitNumber       Field = "permit_number"
	FieldPermitExpiry       Field = "permit_expiry"
)

const detailDateLayout = "2006-01-02"

// Detail is the category-specific payload attached to a request. Exactly one
// variant exists per category; the zero value of a field counts as absent
// for policy checks.
type Detail interface {
	Category() Category
	// Email is the requester's contact address used as the primary
	// notification addressee for non-owner categories.
	Email() string
	// Values flattens the payload for policy evaluation. Absent fields are
	// omitted from the map.
	Values() map[Field]string
}

type OwnerDetail struct {
	ContactEmail string
	Phone        string
	MoveDate     time.Time
}

func (d OwnerDetail) Category() Category { return CategoryOwner }
func (d OwnerDetail) Email() string      { return d.ContactEmail }

func (d OwnerDetail) Values() map[Field]string {
	v := map[Field]string{}
	putStr(v, FieldEmail, d.ContactEmail)
	putStr(v, FieldPhone, d.Phone)
	putDate(v, FieldMoveDate, d.MoveDate)
	return v
}

type TenantDetail struct {
	ContactEmail   string
	Phone          string
	LeaseStart     time.Time
	LeaseEnd       time.Time
	ContractNumber string
}

func (d TenantDetail) Category() Category { return CategoryTenant }
func (d TenantDetail) Email() string      { return d.ContactEmail }

func (d TenantDetail) Values() map[Field]string {
	v := map[Field]string{}
	putStr(v, FieldEmail, d.ContactEmail)
	putStr(v, FieldPhone, d.Phone)
	putDate(v, FieldLeaseStart, d.LeaseStart)
	putDate(v, FieldLeaseEnd, d.LeaseEnd)
	putStr(v, FieldContractNumber, d.ContractNumber)
	return v
}

type HHOCompanyDetail struct {
	ContactEmail       string
	Phone              string
	CompanyName        string
	TradeLicenseNumber string
	TradeLicenseExpiry time.Time
	PermitNumber       string
}

func (d HHOCompanyDetail) Category() Category { return CategoryHHOCompany }
func (d HHOCompanyDetail) Email() string      { return d.ContactEmail }

func (d HHOCompanyDetail) Values() map[Field]string {
	v := map[Field]string{}
	putStr(v, FieldEmail, d.ContactEmail)
	putStr(v, FieldPhone, d.Phone)
	putStr(v, FieldCompanyName, d.CompanyName)
	putStr(v, FieldTradeLicenseNumber, d.TradeLicenseNumber)
	putDate(v, FieldTradeLicenseExpiry, d.TradeLicenseExpiry)
	putStr(v, FieldPermitNumber, d.PermitNumber)
	return v
}

type HHOOwnerDetail struct {
	ContactEmail string
	Phone        string
	PermitNumber string
	PermitExpiry time.Time
}

func (d HHOOwnerDetail) Category() Category { return CategoryHHOOwner }
func (d HHOOwnerDetail) Email() string      { return d.ContactEmail }

func (d HHOOwnerDetail) Values() map[Field]string {
	v := map[Field]string{}
	putStr(v, FieldEmail, d.ContactEmail)
	putStr(v, FieldPhone, d.Phone)
	putStr(v, FieldPermitNumber, d.PermitNumber)
	putDate(v, FieldPermitExpiry, d.PermitExpiry)
	return v
}

func putStr(v map[Field]string, f Field, s string) {
	if s != "" {
		v[f] = s
	}
}

func putDate(v map[Field]string, f Field, t time.Time) {
	if !t.IsZero() {
		v[f] = t.Format(detailDateLayout)
	}
}

// detailEnvelope is the stored representation of a Detail: the category
// discriminator plus the variant payload.
type detailEnvelope struct {
	Category Category        `json:"category"`
	Data     json.RawMessage `json:"data"`
}

// MarshalDetail serializes a Detail into the tagged envelope stored in the
// request row.
func MarshalDetail(d Detail) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal detail payload")
	}
	return json.Marshal(detailEnvelope{Category: d.Category(), Data: data})
}

// UnmarshalDetail decodes a stored envelope back into its concrete variant.
func UnmarshalDetail(raw []byte) (Detail, error) {
	var env detailEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal detail envelope")
	}
	var (
		d   Detail
		err error
	)
	switch env.Category {
	case CategoryOwner:
		var v OwnerDetail
		err = json.Unmarshal(env.Data, &v)
		d = v
	case CategoryTenant:
		var v TenantDetail
		err = json.Unmarshal(env.Data, &v)
		d = v
	case CategoryHHOCompany:
		var v HHOCompanyDetail
		err = json.Unmarshal(env.Data, &v)
		d = v
	case CategoryHHOOwner:
		var v HHOOwnerDetail
		err = json.Unmarshal(env.Data, &v)
		d = v
	default:
		return nil, errors.Errorf("unknown detail category: %q", env.Category)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal %s detail", env.Category)
	}
	return d, nil
}
