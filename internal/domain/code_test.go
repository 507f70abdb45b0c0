package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCode(t *testing.T) {
	tests := []struct {
		domain CodeDomain
		n      int64
		want   string
	}{
		{CodeDomainJob, 1, "J-000001"},
		{CodeDomainEmergency, 42, "E-000042"},
		{CodeDomainInspection, 999999, "I-999999"},
		{CodeDomainMaintenance, 1234567, "M-1234567"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCode(tt.domain, tt.n))
		})
	}
}

func TestCodeDomainValid(t *testing.T) {
	assert.True(t, CodeDomainJob.Valid())
	assert.False(t, CodeDomain("unit").Valid())
	assert.Equal(t, "", CodeDomain("unit").Prefix())
}
