package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func stageNames(p []bson.D) []string {
	names := make([]string, 0, len(p))
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

func TestStatsPipeline(t *testing.T) {
	p := StatsPipeline(4.5)
	assert.Equal(t, []string{"$match", "$group", "$sort"}, stageNames(p))

	match := p[0][0].Value.(bson.M)
	assert.Equal(t, bson.M{"$gte": 4.5}, match["ratingsAverage"])
	assert.Equal(t, bson.M{"$ne": true}, match["secretTour"])
}

func TestMonthlyPlanPipeline(t *testing.T) {
	p := MonthlyPlanPipeline(2021)
	assert.Equal(t,
		[]string{"$match", "$unwind", "$match", "$group", "$addFields", "$project", "$sort", "$limit"},
		stageNames(p))

	window := p[2][0].Value.(bson.M)["startDates"].(bson.M)
	require.Contains(t, window, "$gte")
	require.Contains(t, window, "$lt")
	assert.Equal(t, planMonths, p[7][0].Value)
}

func TestDistancesPipelineStartsWithGeoNear(t *testing.T) {
	p := DistancesPipeline(-118.11, 34.11, 0.001)
	require.Equal(t, "$geoNear", p[0][0].Key)

	geo := p[0][0].Value.(bson.M)
	assert.Equal(t, bson.A{-118.11, 34.11}, geo["near"].(bson.M)["coordinates"])
	assert.Equal(t, 0.001, geo["distanceMultiplier"])
	assert.NotNil(t, geo["query"])
}
