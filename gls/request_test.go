package gls

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	cl, err := NewClient(Config{
		ClientNumber: 100000001,
		Username:     "user@example.com",
		Password:     "secret",
		Country:      Hungary,
		TestClient:   true,
	}, nil, opts...)
	require.NoError(t, err)
	return cl
}

func testAddress(city string) Address {
	return Address{
		City:            city,
		ContactEmail:    "info@example.com",
		ContactName:     "John Doe",
		ContactPhone:    "+36701234567",
		CountryIsoCode:  "HU",
		HouseNumber:     "66",
		HouseNumberInfo: "/a",
		Name:            "ADDRESS",
		Street:          "STREET",
		ZipCode:         "4000",
	}
}

func keys(t *testing.T, body []byte) []string {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &m))
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

func TestBuildPrintLabels(t *testing.T) {
	cl := newTestClient(t)
	p := cl.CreateParcelObject(ParcelArgs{ClientReference: "REF1", Count: 1})

	body, err := cl.BuildRequest(PrintLabelsRequest{ParcelList: []Parcel{p}, ShowPrintDialog: false})
	require.NoError(t, err)

	assert.Equal(t, []string{"ParcelList", "Password", "PrintPosition", "ShowPrintDialog", "Username"}, keys(t, body))

	var got struct {
		Username        string
		Password        []int
		ParcelList      []map[string]interface{}
		PrintPosition   int
		ShowPrintDialog int
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "user@example.com", got.Username)
	assert.Len(t, got.Password, 64)
	assert.Equal(t, 1, got.PrintPosition)
	assert.Equal(t, 0, got.ShowPrintDialog)
	require.Len(t, got.ParcelList, 1)
	assert.Equal(t, "REF1", got.ParcelList[0]["ClientReference"])
	assert.Nil(t, got.ParcelList[0]["PickupDate"])

	body, err = cl.BuildRequest(PrintLabelsRequest{ParcelList: []Parcel{p}, PrintPosition: 3, ShowPrintDialog: true})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 3, got.PrintPosition)
	assert.Equal(t, 1, got.ShowPrintDialog)
}

func TestBuildDeleteLabels(t *testing.T) {
	cl := newTestClient(t)
	body, err := cl.BuildRequest(DeleteLabelsRequest{ParcelIDList: []int64{11, 12}})
	require.NoError(t, err)

	want := `{"Username":"user@example.com","Password":` + HashPassword("secret") +
		`,"ParcelIdList":[11,12],"PrintPosition":1,"ShowPrintDialog":0}`
	assert.Equal(t, want, string(body))
}

func TestBuildGetParcelStatuses(t *testing.T) {
	cl := newTestClient(t)
	body, err := cl.BuildRequest(GetParcelStatusesRequest{ParcelNumber: 123, ReturnPOD: true, LanguageIsoCode: "EN"})
	require.NoError(t, err)

	want := `{"Username":"user@example.com","Password":` + HashPassword("secret") +
		`,"ParcelNumber":123,"ReturnPOD":1,"LanguageIsoCode":"EN"}`
	assert.Equal(t, want, string(body))
	assert.Equal(t, []string{"LanguageIsoCode", "ParcelNumber", "Password", "ReturnPOD", "Username"}, keys(t, body))
}

func TestBuildNilRequest(t *testing.T) {
	cl := newTestClient(t)
	_, err := cl.BuildRequest(nil)
	assert.Error(t, err)
}

func TestServiceItemJSON(t *testing.T) {
	s := CreateServiceObject("PSD", "PSDParameter", map[string]interface{}{"StringValue": "1051-CSOMAGPONT01"})
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"Code":"PSD","PSDParameter":{"StringValue":"1051-CSOMAGPONT01"}}`, string(b))

	b, err = json.Marshal(CreateServiceObject("24H", "24HParameter", nil))
	require.NoError(t, err)
	assert.Equal(t, `{"Code":"24H","24HParameter":{}}`, string(b))
}

func TestCreateParcelObject(t *testing.T) {
	cl := newTestClient(t)
	services := []ServiceItem{CreateServiceObject("PSD", "PSDParameter", map[string]interface{}{"StringValue": "1051-CSOMAGPONT01"})}
	p := cl.CreateParcelObject(ParcelArgs{
		ClientReference: "TEST_method",
		CODAmount:       "1500.7",
		Count:           "5",
		PickupAddress:   testAddress("Debrecen"),
		DeliveryAddress: testAddress("Budapest"),
		ServiceList:     services,
	})

	assert.Equal(t, 100000001, p.ClientNumber)
	assert.Equal(t, 5, p.Count)
	assert.Equal(t, 1500, p.CODAmount)
	assert.Nil(t, p.PickupDate)
	assert.Equal(t, "Debrecen", p.PickupAddress.City)
	assert.Equal(t, "Budapest", p.DeliveryAddress.City)
	assert.Equal(t, services, p.ServiceList)

	p = cl.CreateParcelObject(ParcelArgs{Count: 2, CODAmount: nil})
	assert.Equal(t, 2, p.Count)
	assert.Equal(t, 0, p.CODAmount)

	p = cl.CreateParcelObject(ParcelArgs{Count: "many"})
	assert.Equal(t, 0, p.Count)
}

func TestParcelJSONFields(t *testing.T) {
	cl := newTestClient(t)
	b, err := json.Marshal(cl.CreateParcelObject(ParcelArgs{}))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CODAmount", "CODReference", "ClientNumber", "ClientReference", "Content", "Count",
		"DeliveryAddress", "PickupAddress", "PickupDate", "ServiceList",
	}, keys(t, b))
}

func TestSupportedStatusLanguages(t *testing.T) {
	for _, l := range []string{"EN", "HR", "CS", "HU", "RO", "SK", "SL"} {
		assert.True(t, IsSupportedStatusLanguage(l))
	}
	assert.False(t, IsSupportedStatusLanguage("DE"))
	assert.False(t, IsSupportedStatusLanguage("en"))
}

func TestServiceItemUnmarshal(t *testing.T) {
	var s ServiceItem
	require.NoError(t, json.Unmarshal([]byte(`{"Code":"PSD","PSDParameter":{"StringValue":"1051-CSOMAGPONT01"}}`), &s))
	assert.Equal(t, CreateServiceObject("PSD", "PSDParameter", map[string]interface{}{"StringValue": "1051-CSOMAGPONT01"}), s)

	assert.Error(t, json.Unmarshal([]byte(`{"PSDParameter":{}}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"Code":"X","A":{},"B":{}}`), &s))
}
