package agents

// Emotion decay constants.
const (
	emotionDecay     = 0.9 // Daily intensity multiplier
	emotionFloor     = 0.2 // Below this the emotion fades to neutral
	restingIntensity = 0.1
)

// DecayEmotion fades an agent's emotion toward neutral (passage of time).
func DecayEmotion(a *Agent) {
	if a.Emotion == NeutralEmotion || a.Emotion == "" {
		return
	}
	a.EmotionIntensity *= emotionDecay
	if a.EmotionIntensity < emotionFloor {
		a.Emotion = NeutralEmotion
		a.EmotionIntensity = restingIntensity
	}
}
