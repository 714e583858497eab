package forecast

// BucketByDay groups samples by calendar date in a single pass. Buckets appear
// in the order their date is first seen; the input is not sorted here.
func BucketByDay(samples []NormalizedSample) []DayBucket {
	buckets := make([]DayBucket, 0)
	index := make(map[Date]int)

	for _, s := range samples {
		i, ok := index[s.Date]
		if !ok {
			i = len(buckets)
			index[s.Date] = i
			buckets = append(buckets, DayBucket{Date: s.Date, Label: s.DateLabel})
		}
		buckets[i].Samples = append(buckets[i].Samples, s)
	}

	return buckets
}
