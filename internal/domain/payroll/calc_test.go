package payroll

import (
	"encoding/json"
	"testing"

	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestComputeNet(t *testing.T) {
	tests := []struct {
		name      string
		in        Components
		wantGross int64
		wantDed   int64
		wantNet   int64
	}{
		{
			name:      "basic hra pf tax",
			in:        Components{BasicSalary: d(50000), HRA: d(10000), PF: d(6000), Tax: d(4000)},
			wantGross: 60000, wantDed: 10000, wantNet: 50000,
		},
		{
			name: "every component",
			in: Components{
				BasicSalary: d(40000), HRA: d(8000), Conveyance: d(1600), Medical: d(1250), LTA: d(2000),
				PF: d(4800), Gratuity: d(1900), Tax: d(3000), OtherDeductions: d(500),
			},
			wantGross: 52850, wantDed: 10200, wantNet: 42650,
		},
		{
			name:      "floored at zero",
			in:        Components{BasicSalary: d(1000), Tax: d(5000)},
			wantGross: 1000, wantDed: 5000, wantNet: 0,
		},
		{
			name: "all zero",
			in:   Components{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeNet(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Gross.Equal(d(tt.wantGross)), "gross %s", got.Gross)
			assert.True(t, got.TotalDeductions.Equal(d(tt.wantDed)), "deductions %s", got.TotalDeductions)
			assert.True(t, got.Net.Equal(d(tt.wantNet)), "net %s", got.Net)
		})
	}
}

func TestComputeNet_Deterministic(t *testing.T) {
	in := Components{BasicSalary: decimal.RequireFromString("12345.67"), HRA: decimal.RequireFromString("0.33"), Tax: decimal.RequireFromString("1000.005")}
	a, errA := ComputeNet(in)
	b, errB := ComputeNet(in)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.True(t, a.Net.Equal(b.Net))
	assert.Equal(t, "11345.995", a.Net.String())
}

func TestComputeNet_RejectsNegative(t *testing.T) {
	_, err := ComputeNet(Components{BasicSalary: d(100), Medical: d(-1), PF: d(-2)})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	m := verrs.ToMap()
	assert.Contains(t, m, "medical")
	assert.Contains(t, m, "pf")
}

func TestMonth_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Month
	}{
		{`3`, 3},
		{`"3"`, 3},
		{`"January"`, 1},
		{`"dec"`, 12},
		{`"Smarch"`, 0},
		{`null`, 0},
	}
	for _, tt := range tests {
		var m Month
		require.NoError(t, json.Unmarshal([]byte(tt.in), &m), tt.in)
		assert.Equal(t, tt.want, m, tt.in)
	}

	var m Month
	assert.Error(t, json.Unmarshal([]byte(`true`), &m))
}

func TestCreateSalaryRequest_Validate(t *testing.T) {
	body := `{"employee_id":"e1","month":"June","year":2024,"basic_salary":"50000","hra":10000,"net_salary":1}`
	var req CreateSalaryRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	err := req.Validate()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, map[string]string{"net_salary": "net_salary is computed by the server"}, verrs.ToMap())

	req.NetSalary = nil
	require.NoError(t, req.Validate())
	c := req.Components()
	assert.True(t, c.BasicSalary.Equal(d(50000)))
	assert.True(t, c.HRA.Equal(d(10000)))
	assert.True(t, c.Tax.IsZero())
	assert.Equal(t, Month(6), req.Month)
}

func TestCreateSalaryRequest_Validate_Precision(t *testing.T) {
	body := `{"employee_id":"e1","month":6,"year":2024,"basic_salary":"50000.005","hra":"1200.50","tax":0.1}`
	var req CreateSalaryRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	err := req.Validate()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, map[string]string{"basic_salary": "basic_salary must have at most 2 decimal places"}, verrs.ToMap())

	cents := decimal.RequireFromString("50000.10")
	req.BasicSalary = &cents
	assert.NoError(t, req.Validate())
}

func TestUpdateSalaryRequest_MergeKeepsOmitted(t *testing.T) {
	c := Components{BasicSalary: d(50000), HRA: d(10000)}
	tax := d(4000)
	in := ComponentsInput{Tax: &tax}
	in.MergeInto(&c)

	assert.True(t, c.BasicSalary.Equal(d(50000)))
	assert.True(t, c.Tax.Equal(d(4000)))
}
