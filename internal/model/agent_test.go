package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgent_Provisioned(t *testing.T) {
	endpoint := "https://agent1openai.openai.azure.com/"
	key := "secret"
	deployment := "gpt-3-deployment-agent1"

	tests := []struct {
		name  string
		agent Agent
		want  bool
	}{
		{
			name:  "nothing set",
			agent: Agent{},
			want:  false,
		},
		{
			name:  "endpoint only",
			agent: Agent{OpenAIEndpoint: &endpoint},
			want:  false,
		},
		{
			name:  "missing deployment",
			agent: Agent{OpenAIEndpoint: &endpoint, OpenAIAPIKey: &key},
			want:  false,
		},
		{
			name:  "fully provisioned",
			agent: Agent{OpenAIEndpoint: &endpoint, OpenAIAPIKey: &key, DeploymentName: &deployment},
			want:  true,
		},
		{
			name:  "empty strings do not count",
			agent: Agent{OpenAIEndpoint: new(string), OpenAIAPIKey: new(string), DeploymentName: new(string)},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.agent.Provisioned())
		})
	}
}
