package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type person struct {
	Name string
	Days int
}

func TestSheet(t *testing.T) {
	cols := []Column[person]{
		{Header: "Name", Width: 24, Value: func(p person) interface{} { return p.Name }},
		{Header: "Days", Value: func(p person) interface{} { return p.Days }},
	}
	out, err := Sheet("Employees", cols, []person{{"Asha", 3}, {"Ben", 0}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Employees")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "Days"}, {"Asha", "3"}, {"Ben", "0"}}, rows)
}
