package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skufu/drrisk/internal/prediction"
)

func TestRespondRoutesByKeyword(t *testing.T) {
	tests := []struct {
		message string
		want    Topic
	}{
		{"What are the risk factors?", TopicRiskFactors},
		{"How can I PREVENT vision loss", TopicRiskFactors},
		{"what causes retinopathy", TopicRiskFactors},
		{"Can you show my result", TopicResults},
		{"What does moderate risk mean?", TopicResults},
		{"How to fill the form", TopicForm},
		{"what information do you need", TopicForm},
		{"Tell me about the assessment", TopicForm},
		{"Explain retinopathy", TopicCondition},
		{"what is this", TopicCondition},
		{"Is the model reliable?", TopicModel},
		{"how accurate are you", TopicModel},
		{"hello there", TopicFallback},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, Respond(tt.message).Topic)
		})
	}
}

func TestRespondFirstRuleWins(t *testing.T) {
	// "prevent" outranks "diabetes", and "what does" outranks "diabetes".
	assert.Equal(t, TopicRiskFactors, Respond("how do I prevent diabetes damage").Topic)
	assert.Equal(t, TopicResults, Respond("what does diabetes do to eyes").Topic)
	// "what is" is a condition keyword and is checked before "model".
	assert.Equal(t, TopicCondition, Respond("what is the model").Topic)
}

func TestRespondIsDeterministic(t *testing.T) {
	for _, msg := range []string{"risk factor", "result", "form", "diabetes", "accuracy", "zzz"} {
		assert.Equal(t, Respond(msg), Respond(msg))
	}
}

func TestRespondFallbackEchoesTrimmedMessage(t *testing.T) {
	got := Respond("  tell me a joke  ")
	assert.Equal(t, TopicFallback, got.Topic)
	assert.Contains(t, got.Text, `asking about "tell me a joke"`)
	assert.Contains(t, got.Text, "Could you rephrase your question")
}

func TestModelAnswerMatchesReportedModelInfo(t *testing.T) {
	got := Respond("model accuracy")
	assert.Contains(t, got.Text, prediction.DefaultAlgorithm)
	assert.Contains(t, got.Text, "94.95% accuracy rate")
	assert.Contains(t, got.Text, "ROC-AUC score of 0.982")
}

func TestGreeting(t *testing.T) {
	g := Greeting()
	assert.Equal(t, TopicGreeting, g.Topic)
	assert.True(t, strings.HasPrefix(g.Text, "Hello!"))
}

func TestRespondWithReport(t *testing.T) {
	report := &prediction.RiskReport{
		RiskProbability: 81.34,
		RiskLevel:       prediction.RiskHigh,
		ContributingFactors: []prediction.ContributingFactor{
			{Factor: "HbA1c Level", Value: "9.2%", Impact: prediction.ImpactHigh},
			{Factor: "BMI", Value: "27.0", Impact: prediction.ImpactLow},
		},
	}

	got := RespondWithReport("what do my results mean", report)
	assert.Equal(t, TopicResults, got.Topic)
	assert.Contains(t, got.Text, "Your latest assessment: High risk at 81.3% probability.")
	assert.Contains(t, got.Text, "- High impact: HbA1c Level (9.2%)")
	assert.NotContains(t, got.Text, "BMI (27.0)")

	assert.Equal(t, Respond("what do my results mean"), RespondWithReport("what do my results mean", nil))
	assert.Equal(t, Respond("risk factors"), RespondWithReport("risk factors", report))
}
