package gls

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Operation names, also the last segment of the service URL.
const (
	OpPrintLabels       = "PrintLabels"
	OpDeleteLabels      = "DeleteLabels"
	OpGetParcelStatuses = "GetParcelStatuses"
)

// SupportedStatusLanguages lists language codes GetParcelStatuses accepts.
// The client does not check LanguageIsoCode, callers should.
var SupportedStatusLanguages = []string{"EN", "HR", "CS", "HU", "RO", "SK", "SL"}

// IsSupportedStatusLanguage reports whether code is in SupportedStatusLanguages.
func IsSupportedStatusLanguage(code string) bool {
	for _, l := range SupportedStatusLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// Address is a pickup or delivery address of a parcel.
type Address struct {
	City            string `json:"City"`
	ContactEmail    string `json:"ContactEmail"`
	ContactName     string `json:"ContactName"`
	ContactPhone    string `json:"ContactPhone"`
	CountryIsoCode  string `json:"CountryIsoCode"`
	HouseNumber     string `json:"HouseNumber"`
	HouseNumberInfo string `json:"HouseNumberInfo"`
	Name            string `json:"Name"`
	Street          string `json:"Street"`
	ZipCode         string `json:"ZipCode"`
}

// ServiceItem is an optional parcel service, e.g. parcel shop delivery
// {"Code":"PSD","PSDParameter":{"StringValue":"1051-CSOMAGPONT01"}}.
type ServiceItem struct {
	Code          string
	ParameterName string
	Parameters    map[string]interface{}
}

// MarshalJSON implements json.Marshaler
func (s ServiceItem) MarshalJSON() ([]byte, error) {
	code, err := json.Marshal(s.Code)
	if err != nil {
		return nil, err
	}
	name, err := json.Marshal(s.ParameterName)
	if err != nil {
		return nil, err
	}
	params := s.Parameters
	if params == nil {
		params = map[string]interface{}{}
	}
	p, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("service %s parameters: %w", s.Code, err)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"Code":`)
	buf.Write(code)
	buf.WriteByte(',')
	buf.Write(name)
	buf.WriteByte(':')
	buf.Write(p)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. The object must hold Code and
// at most one parameter block.
func (s *ServiceItem) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	code, ok := raw["Code"]
	if !ok {
		return fmt.Errorf("service without Code: %s", string(b))
	}
	if err := json.Unmarshal(code, &s.Code); err != nil {
		return err
	}
	delete(raw, "Code")
	if len(raw) > 1 {
		return fmt.Errorf("service %s has %d parameter blocks", s.Code, len(raw))
	}
	s.ParameterName, s.Parameters = "", nil
	for name, params := range raw {
		s.ParameterName = name
		if err := json.Unmarshal(params, &s.Parameters); err != nil {
			return fmt.Errorf("service %s parameters: %w", s.Code, err)
		}
	}
	return nil
}

// Parcel is one shipment submitted for label printing.
type Parcel struct {
	ClientNumber    int           `json:"ClientNumber"`
	ClientReference string        `json:"ClientReference"`
	CODAmount       int           `json:"CODAmount"`
	CODReference    string        `json:"CODReference"`
	Content         string        `json:"Content"`
	Count           int           `json:"Count"`
	DeliveryAddress Address       `json:"DeliveryAddress"`
	PickupAddress   Address       `json:"PickupAddress"`
	PickupDate      *Date         `json:"PickupDate"`
	ServiceList     []ServiceItem `json:"ServiceList"`
}

// Date is time.Time in the service's "/Date(1331083326130)/" format
type Date time.Time

// MarshalJSON implements json.Marshaler. Slashes are escaped, the service
// does not recognize the date otherwise.
func (d Date) MarshalJSON() ([]byte, error) {
	ms := time.Time(d).UnixNano() / int64(time.Millisecond)
	return []byte(`"\/Date(` + strconv.FormatInt(ms, 10) + `)\/"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Accepts an optional zone
// suffix, "/Date(1331083326130+0100)/".
func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if !strings.HasPrefix(s, "/Date(") || !strings.HasSuffix(s, ")/") {
		return fmt.Errorf("wrong date format in %s", string(b))
	}
	if len(s) <= len("/Date()/") {
		return fmt.Errorf("wrong date format in %s", string(b))
	}
	s = s[len("/Date(") : len(s)-len(")/")]
	//drop zone, ms are UTC anyway
	if i := strings.IndexAny(s[1:], "+-"); i >= 0 {
		s = s[:i+1]
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("wrong date format in %s: %w", string(b), err)
	}
	*d = Date(time.Unix(0, ms*int64(time.Millisecond)).UTC())
	return nil
}

func (d Date) format(s string) string {
	return time.Time(d).Format(s)
}

//String implementing Stringer interface
func (d Date) String() string {
	return d.format(time.RFC3339)
}

// numericBool is sent as 0 or 1.
type numericBool bool

// MarshalJSON implements json.Marshaler
func (b numericBool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// Request is one of PrintLabelsRequest, DeleteLabelsRequest,
// GetParcelStatusesRequest.
type Request interface {
	// Operation returns the remote operation name.
	Operation() string
	payload(username string, password passwordHash) interface{}
	reference() string
}

// PrintLabelsRequest prints labels for new parcels.
// PrintPosition defaults to 1.
type PrintLabelsRequest struct {
	ParcelList      []Parcel
	PrintPosition   int
	ShowPrintDialog bool
}

// DeleteLabelsRequest deletes labels by parcel id.
type DeleteLabelsRequest struct {
	ParcelIDList    []int64
	PrintPosition   int
	ShowPrintDialog bool
}

// GetParcelStatusesRequest queries the status history of one parcel.
// LanguageIsoCode should be one of SupportedStatusLanguages.
type GetParcelStatusesRequest struct {
	ParcelNumber    int64
	ReturnPOD       bool
	LanguageIsoCode string
}

type printLabelsPayload struct {
	Username        string       `json:"Username"`
	Password        passwordHash `json:"Password"`
	ParcelList      []Parcel     `json:"ParcelList"`
	PrintPosition   int          `json:"PrintPosition"`
	ShowPrintDialog numericBool  `json:"ShowPrintDialog"`
}

type deleteLabelsPayload struct {
	Username        string       `json:"Username"`
	Password        passwordHash `json:"Password"`
	ParcelIDList    []int64      `json:"ParcelIdList"`
	PrintPosition   int          `json:"PrintPosition"`
	ShowPrintDialog numericBool  `json:"ShowPrintDialog"`
}

type getParcelStatusesPayload struct {
	Username        string       `json:"Username"`
	Password        passwordHash `json:"Password"`
	ParcelNumber    int64        `json:"ParcelNumber"`
	ReturnPOD       numericBool  `json:"ReturnPOD"`
	LanguageIsoCode string       `json:"LanguageIsoCode"`
}

func printPosition(p int) int {
	if p == 0 {
		return 1
	}
	return p
}

// Operation implements Request
func (r PrintLabelsRequest) Operation() string { return OpPrintLabels }

func (r PrintLabelsRequest) payload(username string, password passwordHash) interface{} {
	return printLabelsPayload{
		Username:        username,
		Password:        password,
		ParcelList:      r.ParcelList,
		PrintPosition:   printPosition(r.PrintPosition),
		ShowPrintDialog: numericBool(r.ShowPrintDialog),
	}
}

func (r PrintLabelsRequest) reference() string {
	refs := make([]string, 0, len(r.ParcelList))
	for _, p := range r.ParcelList {
		refs = append(refs, p.ClientReference)
	}
	return strings.Join(refs, ",")
}

// Operation implements Request
func (r DeleteLabelsRequest) Operation() string { return OpDeleteLabels }

func (r DeleteLabelsRequest) payload(username string, password passwordHash) interface{} {
	return deleteLabelsPayload{
		Username:        username,
		Password:        password,
		ParcelIDList:    r.ParcelIDList,
		PrintPosition:   printPosition(r.PrintPosition),
		ShowPrintDialog: numericBool(r.ShowPrintDialog),
	}
}

func (r DeleteLabelsRequest) reference() string {
	ids := make([]string, 0, len(r.ParcelIDList))
	for _, id := range r.ParcelIDList {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return strings.Join(ids, ",")
}

// Operation implements Request
func (r GetParcelStatusesRequest) Operation() string { return OpGetParcelStatuses }

func (r GetParcelStatusesRequest) payload(username string, password passwordHash) interface{} {
	return getParcelStatusesPayload{
		Username:        username,
		Password:        password,
		ParcelNumber:    r.ParcelNumber,
		ReturnPOD:       numericBool(r.ReturnPOD),
		LanguageIsoCode: r.LanguageIsoCode,
	}
}

func (r GetParcelStatusesRequest) reference() string {
	return strconv.FormatInt(r.ParcelNumber, 10)
}

// Response is the decoded answer of the service. Its schema is owned by the
// service and not checked here.
type Response struct {
	// Value is the answer decoded into generic maps and slices.
	Value interface{}
	// Raw is the answer body.
	Raw json.RawMessage
}

// Decode decodes the answer body into v.
func (r *Response) Decode(v interface{}) error {
	return json.Unmarshal(r.Raw, v)
}

// String implementing Stringer interface
func (r *Response) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("response %d bytes", len(r.Raw))
}

// Labels returns the PDF carried in the Labels field of a PrintLabels
// answer. ok is false if the answer has no labels.
func (r *Response) Labels() (pdf []byte, ok bool, err error) {
	var resp struct {
		Labels []int `json:"Labels"`
	}
	if err := r.Decode(&resp); err != nil {
		return nil, false, err
	}
	if len(resp.Labels) == 0 {
		return nil, false, nil
	}
	pdf = make([]byte, len(resp.Labels))
	for i, b := range resp.Labels {
		if b < 0 || b > 255 {
			return nil, false, fmt.Errorf("wrong label byte %d at %d", b, i)
		}
		pdf[i] = byte(b)
	}
	return pdf, true, nil
}
