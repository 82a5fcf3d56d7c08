package sources

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Data,Cidade,Temp_Max,Temp_Min,Precipitacao,Condicao
2024-03-01,Lisboa,35,22,0.0,Chuva
2024-03-01,Porto,10.5,2,12.4,Neve
02/03/2024,Faro,22,15,0,Nebulosidade variável
`

func TestDecodeCSV(t *testing.T) {
	obs, err := DecodeCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, obs, 3)

	assert.Equal(t, "Lisboa", obs[0].City)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), obs[0].Date)
	assert.Equal(t, 35.0, obs[0].TempMax)
	assert.Equal(t, 22.0, obs[0].TempMin)
	assert.Equal(t, "Chuva", obs[0].Condition)

	assert.Equal(t, 10.5, obs[1].TempMax)
	assert.Equal(t, 12.4, obs[1].Precipitation)

	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), obs[2].Date)
	assert.Equal(t, "Nebulosidade variável", obs[2].Condition)
}

func TestDecodeCSV_ColumnOrderAndAliases(t *testing.T) {
	input := "\ufeffcondition,CITY,date,extra,precipitation,temp_min,temp_max\n" +
		"Sol,Braga,2024-03-01,x,\"1,5\",9,\"19,5\"\n"

	obs, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, obs, 1)

	assert.Equal(t, "Braga", obs[0].City)
	assert.Equal(t, "Sol", obs[0].Condition)
	assert.Equal(t, 19.5, obs[0].TempMax)
	assert.Equal(t, 1.5, obs[0].Precipitation)
}

func TestDecodeCSV_Empty(t *testing.T) {
	obs, err := DecodeCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestDecodeCSV_MissingColumn(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("Data,Cidade,Temp_Max\n2024-03-01,Lisboa,20\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestDecodeCSV_BadRows(t *testing.T) {
	header := "Data,Cidade,Temp_Max,Temp_Min,Precipitacao,Condicao\n"
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad date", "yesterday,Lisboa,20,10,0,Sol", "line 2: invalid date"},
		{"bad number", "2024-03-01,Lisboa,hot,10,0,Sol", "line 2: invalid temp_max"},
		{"empty city", "2024-03-01, ,20,10,0,Sol", "line 2: empty city"},
		{"negative precipitation", "2024-03-01,Lisboa,20,10,-1,Sol", "line 2: negative precipitation"},
		{"nan temp_max", "2024-03-01,Lisboa,NaN,10,0,Chuva", "line 2: non-finite temp_max"},
		{"inf temp_min", "2024-03-01,Lisboa,20,Inf,0,Sol", "line 2: non-finite temp_min"},
		{"negative inf precipitation", "2024-03-01,Lisboa,20,10,-Inf,Sol", "line 2: non-finite precipitation"},
		{"blank temp_max", "2024-03-01,Lisboa,,10,0,Sol", "line 2: invalid temp_max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCSV(strings.NewReader(header + tt.row + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeCSV_WrongFieldCount(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("Data,Cidade,Temp_Max,Temp_Min,Precipitacao,Condicao\n2024-03-01,Lisboa\n"))
	assert.Error(t, err)
}
