package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/classifier"
)

func TestClient(t *testing.T) {
	ctx := context.Background()
	client := NewClient().
		On(classifier.CatQuestion, classifier.Completed("yes")).
		Fail(classifier.SafetyQuestion, errors.New("throttled"))

	answer, err := client.Ask(ctx, classifier.Prompt{Question: classifier.CatQuestion})
	require.NoError(t, err)
	require.Equal(t, "yes", answer.Text)

	_, err = client.Ask(ctx, classifier.Prompt{Question: classifier.SafetyQuestion})
	require.EqualError(t, err, "throttled")

	_, err = client.Ask(ctx, classifier.Prompt{Question: "Is this a dog?"})
	require.Error(t, err)

	require.Len(t, client.Prompts(), 3)
	require.Equal(t, 1, client.Asked(classifier.CatQuestion))
}
