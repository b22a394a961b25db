package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString decodes a JSON string or number into a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// Code decodes either `"VALUE"` or `{"<key>": "VALUE"}` as used by the
// product service for status and type.
type Code string

func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("expected string or object: %w", err)
	}
	for _, key := range []string{"status", "type", "code"} {
		if v, ok := obj[key].(string); ok {
			*c = Code(v)
			return nil
		}
	}
	*c = ""
	return nil
}

type Merchandise struct {
	TeamID string `json:"teamId"`
}

type ProductBuyer struct {
	EmailID        string `json:"emailId"`
	IsPrimaryBuyer bool   `json:"isPrimaryBuyer"`
}

type ProductIdentifier struct {
	PID    FlexString     `json:"pid"`
	Buyers []ProductBuyer `json:"buyers"`
}

type Selection struct {
	SID FlexString `json:"sid"`
}

type ThemeWeek struct {
	WID FlexString `json:"wid"`
}

type ProductMetadata struct {
	Theme     string     `json:"theme"`
	ThemeWeek *ThemeWeek `json:"themeWeek"`
}

type Thumbnail struct {
	Size FlexString `json:"size"`
	URL  string     `json:"url"`
}

type Image struct {
	URL        string      `json:"url"`
	Thumbnails []Thumbnail `json:"thumbnails"`
}

// Product is the typed projection of a product resource used by the
// permission rules and the notification writer.
type Product struct {
	Name              string             `json:"name"`
	RevisionVersion   FlexString         `json:"revisionVersion"`
	IAN               FlexString         `json:"ian"`
	Status            Code               `json:"status"`
	Type              Code               `json:"type"`
	CreatedBy         string             `json:"createdBy"`
	Merchandise       *Merchandise       `json:"merchandise"`
	ProductIdentifier *ProductIdentifier `json:"productIdentifier"`
	Selection         *Selection         `json:"selection"`
	Metadata          *ProductMetadata   `json:"metadata"`
	Images            []Image            `json:"images"`
}

// DecodeProduct projects a raw resource document onto Product. A nested
// productDetails document takes precedence over the top level.
func DecodeProduct(raw map[string]any) (Product, error) {
	var p Product
	if raw == nil {
		return p, nil
	}
	src := raw
	if details, ok := raw["productDetails"].(map[string]any); ok && details != nil {
		src = details
	}
	data, err := json.Marshal(src)
	if err != nil {
		return p, fmt.Errorf("failed to encode product: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to decode product: %w", err)
	}
	return p, nil
}

// PID returns the product identifier or an empty string.
func (p Product) PID() string {
	if p.ProductIdentifier == nil {
		return ""
	}
	return p.ProductIdentifier.PID.String()
}

// MerchTeamID returns the merchandising team of the product or an empty string.
func (p Product) MerchTeamID() string {
	if p.Merchandise == nil {
		return ""
	}
	return p.Merchandise.TeamID
}

// SelectionID returns the selection id or "0" when the product has none.
func (p Product) SelectionID() string {
	if p.Selection == nil || p.Selection.SID == "" {
		return "0"
	}
	return p.Selection.SID.String()
}

// PrimaryBuyerEmail returns the email of the primary buyer, if any.
func (p Product) PrimaryBuyerEmail() string {
	if p.ProductIdentifier == nil {
		return ""
	}
	for _, b := range p.ProductIdentifier.Buyers {
		if b.IsPrimaryBuyer {
			return b.EmailID
		}
	}
	return ""
}

// IsTextile reports whether the product type is TEXTILE.
func (p Product) IsTextile() bool {
	return strings.EqualFold(string(p.Type), ProductTypeTextile)
}

// IsBuyerVisible reports whether the product status is one buyers may see.
func (p Product) IsBuyerVisible() bool {
	for _, s := range BuyerStatuses {
		if string(p.Status) == s {
			return true
		}
	}
	return false
}

// Thumbnail200 returns the first 200px thumbnail of the product images.
func (p Product) Thumbnail200() string {
	for _, img := range p.Images {
		for _, th := range img.Thumbnails {
			if th.Size == "200" {
				return th.URL
			}
		}
	}
	return ""
}
