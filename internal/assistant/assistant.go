// Package assistant answers help questions about the risk assessment with
// canned text picked by keyword. There is no model behind it: the same
// message always gets the same reply.
package assistant

import (
	"fmt"
	"strings"

	"github.com/Skufu/drrisk/internal/prediction"
)

type Topic string

const (
	TopicGreeting    Topic = "greeting"
	TopicRiskFactors Topic = "risk_factors"
	TopicResults     Topic = "results"
	TopicForm        Topic = "form"
	TopicCondition   Topic = "condition"
	TopicModel       Topic = "model"
	TopicFallback    Topic = "fallback"
)

type Reply struct {
	Topic Topic  `json:"topic"`
	Text  string `json:"reply"`
}

const greeting = `Hello! I'm your assistant for Diabetic Retinopathy Risk Prediction. I can help you understand:

- How to use the assessment form
- What the results mean
- Risk factors and prevention
- General questions about diabetic retinopathy

How can I help you today?`

const riskFactorsAnswer = `Diabetic Retinopathy risk factors include:

High risk factors:
- Poor blood glucose control (high HbA1c)
- Long duration of diabetes (10+ years)
- High blood pressure
- High cholesterol
- Smoking

Moderate risk factors:
- Obesity (BMI > 30)
- Sedentary lifestyle
- Family history of diabetic retinopathy
- Type 1 diabetes

Prevention tips:
- Maintain HbA1c below 7%
- Control blood pressure (<130/80 mmHg)
- Regular eye exams (annually or as recommended)
- Quit smoking
- Exercise regularly
- Healthy diet rich in vegetables and whole grains`

const resultsAnswer = `Here's how to interpret your results:

Risk levels:
- Low Risk (<30%): Continue regular eye exams and maintain good diabetes management
- Moderate Risk (30-70%): Schedule comprehensive eye examination within 1 month
- High Risk (>70%): Immediate consultation with an ophthalmologist recommended

Contributing factors:
The assessment shows which factors most impact your risk. Focus on improving high-impact factors first.

Recommendations:
Follow the personalized recommendations provided. They're tailored to your specific risk profile.`

const formAnswer = `Here's how to complete the assessment:

Step 1 - Patient Profile:
- Age: Your current age
- Gender: Male or Female

Step 2 - Diabetes History:
- Diabetes Type: Type 1 or Type 2
- Years Since Diagnosis: How long you've had diabetes

Step 3 - Clinical Measurements (optional but recommended):
- HbA1c: Your most recent HbA1c level (target: <7%)
- BMI: Body Mass Index (weight in kg / height in m²)
- Blood Pressure: Systolic and Diastolic readings
- Blood Sugar: Fasting and postprandial levels

Step 4 - Lifestyle Factors:
- Physical Activity Level: Sedentary or Active
- Smoking Status: Check if you're a current smoker
- Family History: Check if family members have diabetic retinopathy

Tip: More accurate data means more accurate predictions!`

const conditionAnswer = `Diabetic Retinopathy is a diabetes complication that affects the eyes. It's caused by damage to blood vessels in the retina.

Key facts:
- Early stages often have no symptoms
- Can lead to vision loss if untreated
- Regular screening is crucial
- Early detection and treatment can prevent vision loss

Symptoms (when present):
- Blurred vision
- Floaters
- Dark spots in vision
- Difficulty seeing at night

Treatment:
- Laser treatment
- Injections
- Surgery (in advanced cases)
- Better diabetes control

Remember: This tool provides risk assessment, not diagnosis. Always consult healthcare professionals.`

var modelAnswer = fmt.Sprintf(`Our prediction model uses:

Technology:
- %s
- Trained on hospital datasets
- %.2f%% accuracy rate
- ROC-AUC score of %.3f

What this means:
- The model is highly reliable for risk assessment
- Based on patterns from thousands of patient records
- Continuously validated against real-world data

Important:
- This is a risk prediction tool, not a diagnostic tool
- Results should be discussed with healthcare providers
- Regular medical check-ups are still essential`,
	prediction.DefaultAlgorithm, prediction.ModelAccuracy, prediction.ModelROCAUC)

const fallbackAnswer = `I understand you're asking about "%s".

I can help with:
- Understanding your risk assessment results
- Explaining risk factors and prevention
- Guidance on filling out the assessment form
- General questions about diabetic retinopathy
- Information about the prediction model

Could you rephrase your question, or ask about one of these topics?`

type rule struct {
	topic    Topic
	keywords []string
	answer   string
}

// rules are tried in order and the first keyword hit wins, so "what does
// diabetes mean" is a results question, not a condition question.
var rules = []rule{
	{TopicRiskFactors, []string{"risk factor", "what causes", "prevent"}, riskFactorsAnswer},
	{TopicResults, []string{"result", "what does", "mean"}, resultsAnswer},
	{TopicForm, []string{"form", "assessment", "how to fill", "what information"}, formAnswer},
	{TopicCondition, []string{"diabetes", "what is", "explain"}, conditionAnswer},
	{TopicModel, []string{"accuracy", "model", "how accurate", "reliable"}, modelAnswer},
}

// Greeting is the opening message shown before the user asks anything.
func Greeting() Reply {
	return Reply{Topic: TopicGreeting, Text: greeting}
}

// Respond picks the canned answer for message. Matching is a case-insensitive
// substring test; messages that hit no rule get a fallback that echoes them.
func Respond(message string) Reply {
	message = strings.TrimSpace(message)
	lower := strings.ToLower(message)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return Reply{Topic: r.topic, Text: r.answer}
			}
		}
	}
	return Reply{Topic: TopicFallback, Text: fmt.Sprintf(fallbackAnswer, message)}
}

// RespondWithReport is Respond plus a summary of the caller's latest report
// when the question is about results. A nil report changes nothing.
func RespondWithReport(message string, report *prediction.RiskReport) Reply {
	reply := Respond(message)
	if report == nil || reply.Topic != TopicResults {
		return reply
	}

	var b strings.Builder
	b.WriteString(reply.Text)
	fmt.Fprintf(&b, "\n\nYour latest assessment: %s risk at %.1f%% probability.", report.RiskLevel, report.RiskProbability)
	for _, f := range report.ContributingFactors {
		if f.Impact == prediction.ImpactHigh {
			fmt.Fprintf(&b, "\n- High impact: %s (%s)", f.Factor, f.Value)
		}
	}
	reply.Text = b.String()
	return reply
}
