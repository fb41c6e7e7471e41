package dashboard

import "github.com/pivolan/readstats_dashboard/domain/models"

// BucketOf labels a single read length. A length equal to a boundary
// belongs to the higher bucket.
func BucketOf(length int, t models.Thresholds) models.BucketLabel {
	switch {
	case length < t.Mid:
		return models.BucketShort
	case length < t.Long:
		return models.BucketMid
	default:
		return models.BucketLong
	}
}

// Bucketize labels every length element-wise. It fails with
// models.ErrInvalidThresholds instead of producing an empty mid bucket.
func Bucketize(lengths []int, t models.Thresholds) ([]models.BucketLabel, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	labels := make([]models.BucketLabel, len(lengths))
	for i, l := range lengths {
		labels[i] = BucketOf(l, t)
	}
	return labels, nil
}
