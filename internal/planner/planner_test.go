package planner

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(harvest.DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestPlanCoversRangeWithoutGapsOrOverlaps(t *testing.T) {
	t.Parallel()

	req := Request{
		StartDate:     date(t, "01/01/2024"),
		EndDate:       date(t, "31/01/2024"),
		Query:         "labour",
		BodyKeywords:  []string{"Labour Count"},
		PartitionDays: 7,
	}
	parts, err := New("").Plan(req)
	require.NoError(t, err)
	require.NotEmpty(t, parts)

	require.Equal(t, req.StartDate, parts[0].From)
	require.Equal(t, req.EndDate, parts[len(parts)-1].To)
	for i := 1; i < len(parts); i++ {
		require.Equal(t, parts[i-1].To.AddDate(0, 0, 1), parts[i].From,
			"partition %d must start the day after partition %d ends", i, i-1)
	}
}

func TestPlanTwoPartitionScenario(t *testing.T) {
	t.Parallel()

	parts, err := New("").Plan(Request{
		StartDate:     date(t, "01/01/2024"),
		EndDate:       date(t, "10/01/2024"),
		Query:         "labour",
		BodyKeywords:  []string{"Labour Count"},
		PartitionDays: 5,
	})
	require.NoError(t, err)
	require.Len(t, parts, 2)

	require.Equal(t, "01-01-2024", parts[0].Key())
	require.Equal(t, date(t, "05/01/2024"), parts[0].To)
	require.Equal(t, "06-01-2024", parts[1].Key())
	require.Equal(t, date(t, "10/01/2024"), parts[1].To)
}

func TestPlanURLIsDeterministic(t *testing.T) {
	t.Parallel()

	req := Request{
		StartDate:     date(t, "04/11/2025"),
		EndDate:       date(t, "13/11/2025"),
		Query:         "labour",
		BodyKeywords:  []string{"Labour Count", "Workplace Relations Commission"},
		PartitionDays: 10,
	}
	first, err := New("").Plan(req)
	require.NoError(t, err)
	second, err := New("").Plan(req)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, first, 1)

	u, err := url.Parse(first[0].URL)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "1", q.Get("decisions"))
	require.Equal(t, `"labour"`, q.Get("q"))
	require.Equal(t, "04/11/2025", q.Get("from"))
	require.Equal(t, "13/11/2025", q.Get("to"))
	require.Equal(t, "3,15376", q.Get("body"))
}

func TestPlanRejectsUnknownBodyKeyword(t *testing.T) {
	t.Parallel()

	_, err := New("").Plan(Request{
		StartDate:     date(t, "01/01/2024"),
		EndDate:       date(t, "02/01/2024"),
		Query:         "labour",
		BodyKeywords:  []string{"High Court"},
		PartitionDays: 1,
	})
	var cfgErr *harvest.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	require.Contains(t, cfgErr.Error(), "High Court")
}

func TestPlanRejectsInvalidParameters(t *testing.T) {
	t.Parallel()

	base := Request{
		StartDate:     date(t, "01/01/2024"),
		EndDate:       date(t, "02/01/2024"),
		Query:         "labour",
		BodyKeywords:  []string{"Labour Count"},
		PartitionDays: 1,
	}

	noDays := base
	noDays.PartitionDays = 0
	_, err := New("").Plan(noDays)
	var cfgErr *harvest.ConfigError
	require.True(t, errors.As(err, &cfgErr))

	inverted := base
	inverted.StartDate, inverted.EndDate = inverted.EndDate, inverted.StartDate
	_, err = New("").Plan(inverted)
	require.True(t, errors.As(err, &cfgErr))

	empty := base
	empty.Query = "  "
	_, err = New("").Plan(empty)
	require.True(t, errors.As(err, &cfgErr))
}

func TestBodyParamJoinsInInputOrder(t *testing.T) {
	t.Parallel()

	body, err := BodyParam([]string{"Workplace Relations Commission", "Equality Tribunal"})
	require.NoError(t, err)
	require.Equal(t, "15376,1", body)
}
