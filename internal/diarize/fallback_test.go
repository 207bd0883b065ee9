package diarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediascribe/mediascribe/internal/align"
)

func TestFallbackSegmentsTwentyFiveSeconds(t *testing.T) {
	segments := FallbackSegments(25)

	require.Equal(t, []align.DiarizationSegment{
		{Start: 0, End: 10, Speaker: "SPEAKER_1"},
		{Start: 10, End: 20, Speaker: "SPEAKER_2"},
		{Start: 20, End: 25, Speaker: "SPEAKER_1"},
	}, segments)
}

func TestFallbackSegmentsDeterministic(t *testing.T) {
	assert.Equal(t, FallbackSegments(95), FallbackSegments(95))
}

func TestFallbackSegmentsAlternateOnTwentySecondPeriod(t *testing.T) {
	segments := FallbackSegments(60)
	require.Len(t, segments, 6)

	want := []string{"SPEAKER_1", "SPEAKER_2", "SPEAKER_1", "SPEAKER_2", "SPEAKER_1", "SPEAKER_2"}
	for i, seg := range segments {
		assert.Equal(t, want[i], seg.Speaker, "bucket %d", i)
	}
}

func TestFallbackSegmentsZeroDuration(t *testing.T) {
	assert.Empty(t, FallbackSegments(0))
}

func TestFallbackSegmentsShortAudioGetsOneBucket(t *testing.T) {
	segments := FallbackSegments(4.5)

	require.Len(t, segments, 1)
	assert.Equal(t, align.DiarizationSegment{Start: 0, End: 4.5, Speaker: "SPEAKER_1"}, segments[0])
}

func TestFallbackSegmentsFinalBucketEndsAtDuration(t *testing.T) {
	segments := FallbackSegments(33.2)

	require.Len(t, segments, 4)
	last := segments[len(segments)-1]
	assert.Equal(t, 30.0, last.Start)
	assert.Equal(t, 33.2, last.End)
	assert.Equal(t, "SPEAKER_2", last.Speaker)
}
