package leave

import (
	"encoding/json"
	"testing"

	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitLeaveRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{
			name: "valid",
			body: `{"employee_id":"e1","leave_type":"CASUAL","start_date":"2024-06-03","end_date":"2024-06-05","reason":"family"}`,
		},
		{
			name:       "inverted range",
			body:       `{"employee_id":"e1","leave_type":"CASUAL","start_date":"2024-06-05","end_date":"2024-06-03","reason":"family"}`,
			wantFields: []string{"end_date"},
		},
		{
			name:       "unknown type",
			body:       `{"employee_id":"e1","leave_type":"VACATION","start_date":"2024-06-03","end_date":"2024-06-05","reason":"family"}`,
			wantFields: []string{"leave_type"},
		},
		{
			name:       "blank reason",
			body:       `{"employee_id":"e1","leave_type":"SICK","start_date":"2024-06-03","end_date":"2024-06-05","reason":"  "}`,
			wantFields: []string{"reason"},
		},
		{
			name:       "client supplied derived fields",
			body:       `{"employee_id":"e1","leave_type":"SICK","start_date":"2024-06-03","end_date":"2024-06-05","reason":"flu","days_count":1,"status":"APPROVED"}`,
			wantFields: []string{"days_count", "status"},
		},
		{
			name:       "bad dates",
			body:       `{"employee_id":"e1","leave_type":"SICK","start_date":"06/03/2024","end_date":"","reason":"flu"}`,
			wantFields: []string{"start_date", "end_date"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req SubmitLeaveRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			err := req.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				assert.Equal(t, 3, CountDays(req.Start, req.End))
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			m := verrs.ToMap()
			for _, f := range tt.wantFields {
				assert.Contains(t, m, f)
			}
		})
	}
}

func TestSubmitLeaveRequest_NullDerivedFieldAccepted(t *testing.T) {
	var req SubmitLeaveRequest
	body := `{"employee_id":"e1","leave_type":"EARNED","start_date":"2024-06-03","end_date":"2024-06-03","reason":"trip","days_count":null}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.NoError(t, req.Validate())
}

func TestLeaveRequestFilter_Validate(t *testing.T) {
	status := "pending"
	f := LeaveRequestFilter{Status: &status}
	require.NoError(t, f.Validate())
	assert.Equal(t, "PENDING", *f.Status)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, validator.DefaultPageLimit, f.Limit)

	bad := "CANCELLED"
	f = LeaveRequestFilter{Status: &bad}
	assert.Error(t, f.Validate())
}
