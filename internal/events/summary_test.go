package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	history := []Event{
		{Type: TypeSocial, Name: "Old News", Day: 1, Participants: []string{"zed"}},
		{Type: TypeNatural, Name: "Great Storm", Day: 20},
		{Type: TypeSocial, Name: "Love Triangle", Day: 25, Participants: []string{"ana", "bo", "cy"}},
		{Type: TypeFollowUp, Name: "Aftermath: Rivalry Formation", Day: 27, Participants: []string{"ana", "bo", "cy"}},
		{Type: TypeSocial, Name: "Mentorship Forms", Day: 30, Participants: []string{"bo", "dee"}},
		{Type: TypePolitical, Name: "Leadership Challenge", Day: 30, Participants: []string{"eve", "fay"}},
	}

	sum := Summarize(history, 10)

	assert.Equal(t, 5, sum.TotalEvents)
	assert.Equal(t, map[EventType]int{
		TypeNatural:   1,
		TypeSocial:    2,
		TypeFollowUp:  1,
		TypePolitical: 1,
	}, sum.EventTypes)

	require.Len(t, sum.MostActiveAgents, 5)
	assert.Equal(t, AgentActivity{Name: "bo", Events: 3}, sum.MostActiveAgents[0])
	assert.Equal(t, AgentActivity{Name: "ana", Events: 2}, sum.MostActiveAgents[1])
	assert.Equal(t, AgentActivity{Name: "cy", Events: 2}, sum.MostActiveAgents[2])
	assert.Equal(t, AgentActivity{Name: "dee", Events: 1}, sum.MostActiveAgents[3])
	assert.Equal(t, AgentActivity{Name: "eve", Events: 1}, sum.MostActiveAgents[4])

	require.Len(t, sum.Timeline, 5)
	assert.Equal(t, TimelineEntry{Day: 20, Name: "Great Storm"}, sum.Timeline[0])
	assert.Equal(t, TimelineEntry{Day: 30, Name: "Leadership Challenge"}, sum.Timeline[4])
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil, 30)
	assert.Zero(t, sum.TotalEvents)
	assert.Empty(t, sum.EventTypes)
	assert.Empty(t, sum.MostActiveAgents)
	assert.Empty(t, sum.Timeline)
}
