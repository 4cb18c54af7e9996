package geodata

// Centroid cache. Area features carry zero or more representative
// interior points used to anchor labels and point symbols; concave
// and view-clipped polygons can legitimately have several. The cache
// is enumerated with a cursor so multiple render passes (symbol pass,
// text pass) can walk the same centroid list independently.

// ResetCentroids initializes or empties the centroid cache and
// rewinds the cursor.
func (o *Object) ResetCentroids() {
	o.centroids = o.centroids[:0]
	o.haveCents = true
	o.centroidIdx = 0
}

// AddCentroid appends one label point to the cache.
func (o *Object) AddCentroid(x, y float64) {
	if !o.haveCents {
		o.ResetCentroids()
	}
	o.centroids = append(o.centroids, [2]float64{x, y})
}

// HasCentroid reports whether the cache holds any label points,
// lazily creating an empty cache when none exists. It rewinds the
// cursor so a subsequent NextCentroid walk starts from the first
// point.
func (o *Object) HasCentroid() bool {
	if !o.haveCents {
		o.ResetCentroids()
		return false
	}
	o.centroidIdx = 0
	return len(o.centroids) > 0
}

// NextCentroid returns the next cached label point and advances the
// cursor; ok is false when the cache is exhausted.
func (o *Object) NextCentroid() (x, y float64, ok bool) {
	if o.centroidIdx >= len(o.centroids) {
		return 0, 0, false
	}
	pt := o.centroids[o.centroidIdx]
	o.centroidIdx++
	return pt[0], pt[1], true
}

// CentroidCount returns the number of cached label points.
func (o *Object) CentroidCount() int { return len(o.centroids) }
