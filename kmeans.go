package cutlaw

import (
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Clustering defaults.
const (
	DefaultMaxK          = 10
	DefaultMaxIterations = 300
	DefaultRestarts      = 10
	maxRestarts          = 100
	maxIterationsCap     = 10_000
	silhouetteSample     = 5000
	seedStream           = 0x9e3779b97f4a7c15
)

// ClusterInput is a point cloud. K zero selects K automatically with the
// elbow rule over 1..MaxK. The same Seed always yields the same result.
type ClusterInput struct {
	Points        [][]float64 `json:"points"`
	K             int         `json:"k,omitempty"`
	MaxK          int         `json:"max_k,omitempty"`
	MaxIterations int         `json:"max_iterations,omitempty"`
	Restarts      int         `json:"restarts,omitempty"`
	Seed          uint64      `json:"seed"`
}

func (in ClusterInput) maxIterations() int {
	if in.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return min(in.MaxIterations, maxIterationsCap)
}

func (in ClusterInput) restarts() int {
	if in.Restarts <= 0 {
		return DefaultRestarts
	}
	return min(in.Restarts, maxRestarts)
}

func (in ClusterInput) maxK() int {
	k := in.MaxK
	if k <= 0 {
		k = DefaultMaxK
	}
	return min(k, MaxClusterK, len(in.Points))
}

// ClusterResult is one cluster of the best run. Members are point indices.
type ClusterResult struct {
	Centroid []float64 `json:"centroid"`
	Size     int       `json:"size"`
	Inertia  float64   `json:"inertia"`
	Members  []int     `json:"members"`
}

// KMeansResult is the lowest-inertia clustering over all restarts.
type KMeansResult struct {
	K            int             `json:"k"`
	AutoK        bool            `json:"auto_k"`
	Clusters     []ClusterResult `json:"clusters"`
	Labels       []int           `json:"labels"`
	TotalInertia float64         `json:"total_inertia"`
	Silhouette   float64         `json:"silhouette"`
	Iterations   int             `json:"iterations"`
	Converged    bool            `json:"converged"`
	InertiaByK   []float64       `json:"inertia_by_k,omitempty"` // index k-1
	Warnings     `json:"warnings"`
}

// KMeans is K-Means++ with restarts and elbow auto-K.
type KMeans struct{}

func (KMeans) Validate(in ClusterInput) ValidationResult {
	var v validator
	n := len(in.Points)
	switch {
	case n == 0:
		v.errorf("points", "at least one point is required")
	case n > MaxClusterPoints:
		v.errorf("points", "%d points exceeds the maximum of %d", n, MaxClusterPoints)
	}
	if n > 0 {
		dims := len(in.Points[0])
		if dims == 0 || dims > MaxClusterDims {
			v.errorf("points", "dimension must be between 1 and %d, got %d", MaxClusterDims, dims)
		}
	pointLoop:
		for i, p := range in.Points {
			if len(p) != dims {
				v.errorf("points", "point %d has %d dimensions, want %d", i, len(p), dims)
				break
			}
			for _, x := range p {
				if !isFinite(x) {
					v.errorf("points", "point %d has a non-finite coordinate", i)
					break pointLoop
				}
			}
		}
	}
	switch {
	case in.K < 0:
		v.errorf("k", "must not be negative, got %d", in.K)
	case in.K > MaxClusterK:
		v.errorf("k", "must be at most %d, got %d", MaxClusterK, in.K)
	case n > 0 && in.K > n:
		v.errorf("k", "k=%d exceeds the number of points %d", in.K, n)
	}
	if in.MaxK < 0 || in.MaxK > MaxClusterK {
		v.errorf("max_k", "must be between 0 and %d, got %d", MaxClusterK, in.MaxK)
	}
	if in.MaxIterations < 0 {
		v.errorf("max_iterations", "must not be negative, got %d", in.MaxIterations)
	} else if in.MaxIterations > maxIterationsCap {
		v.warnf("max_iterations", "%d capped at %d", in.MaxIterations, maxIterationsCap)
	}
	if in.Restarts < 0 {
		v.errorf("restarts", "must not be negative, got %d", in.Restarts)
	} else if in.Restarts > maxRestarts {
		v.warnf("restarts", "%d capped at %d", in.Restarts, maxRestarts)
	}
	return v.result()
}

// run is the outcome of one Lloyd iteration sequence.
type run struct {
	centroids  [][]float64
	labels     []int
	inertia    float64
	iterations int
	converged  bool
	empty      bool
}

func (KMeans) Calculate(in ClusterInput) KMeansResult {
	out := KMeansResult{Clusters: []ClusterResult{}, Labels: []int{}}
	points := in.Points
	if len(points) == 0 {
		out.add(WarnEmptyCluster, "no points to cluster")
		return out
	}
	if dims := len(points[0]); dims == 0 || slices.ContainsFunc(points, func(p []float64) bool { return len(p) != dims }) {
		out.add(WarnEmptyCluster, "points have inconsistent dimensions; nothing clustered")
		return out
	}

	var best run
	if in.K > 0 {
		out.K = min(in.K, len(points))
		best = bestOf(points, out.K, in)
	} else {
		out.AutoK = true
		maxK := in.maxK()
		runs := make([]run, maxK)
		out.InertiaByK = make([]float64, maxK)
		for k := 1; k <= maxK; k++ {
			runs[k-1] = bestOf(points, k, in)
			out.InertiaByK[k-1] = runs[k-1].inertia
		}
		out.K = elbow(out.InertiaByK)
		best = runs[out.K-1]
	}

	if best.empty {
		out.add(WarnEmptyCluster, "a cluster lost all its points; its centroid was kept")
	}
	if !best.converged {
		out.add(WarnNotConverged, "centroids still moving after %d iterations", best.iterations)
	}

	out.Labels = best.labels
	out.TotalInertia = best.inertia
	out.Iterations = best.iterations
	out.Converged = best.converged
	out.Clusters = make([]ClusterResult, len(best.centroids))
	for c, centroid := range best.centroids {
		out.Clusters[c] = ClusterResult{Centroid: centroid, Members: []int{}}
	}
	for i, c := range best.labels {
		cl := &out.Clusters[c]
		cl.Size++
		cl.Members = append(cl.Members, i)
		cl.Inertia += sqDist(points[i], cl.Centroid)
	}
	out.Silhouette = silhouette(points, best.labels, len(best.centroids))
	return out
}

// elbow picks the k maximising I[k−1] − 2·I[k] + I[k+1], with inertia[k-1] = I[k].
func elbow(inertia []float64) int {
	n := len(inertia)
	if n < 3 {
		return n
	}
	bestK, bestCurv := 2, math.Inf(-1)
	for k := 2; k < n; k++ {
		curv := inertia[k-2] - 2*inertia[k-1] + inertia[k]
		if curv > bestCurv {
			bestK, bestCurv = k, curv
		}
	}
	return bestK
}

func bestOf(points [][]float64, k int, in ClusterInput) run {
	rng := rand.New(rand.NewPCG(in.Seed, seedStream^uint64(k)))
	var best run
	for r := 0; r < in.restarts(); r++ {
		res := lloyd(points, seedPlusPlus(points, k, rng), in.maxIterations())
		if r == 0 || res.inertia < best.inertia {
			best = res
		}
	}
	return best
}

// seedPlusPlus draws k initial centroids with probability proportional to
// the squared distance to the nearest centroid already chosen.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, slices.Clone(points[rng.IntN(n)]))

	d2 := make([]float64, n)
	for i, p := range points {
		d2[i] = sqDist(p, centroids[0])
	}
	for len(centroids) < k {
		total := floats.Sum(d2)
		next := rng.IntN(n)
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range d2 {
				acc += d
				if acc >= target && d > 0 {
					next = i
					break
				}
			}
		}
		c := slices.Clone(points[next])
		centroids = append(centroids, c)
		for i, p := range points {
			d2[i] = math.Min(d2[i], sqDist(p, c))
		}
	}
	return centroids
}

func lloyd(points [][]float64, centroids [][]float64, maxIter int) run {
	k := len(centroids)
	dims := len(points[0])
	labels := make([]int, len(points))
	res := run{centroids: centroids, labels: labels}

	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, dims)
	}
	counts := make([]int, k)

	for iter := 1; iter <= maxIter; iter++ {
		res.iterations = iter
		for i, p := range points {
			labels[i] = nearest(p, centroids)
		}

		for c := range sums {
			floats.Scale(0, sums[c])
			counts[c] = 0
		}
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}

		moved := false
		for c := range centroids {
			if counts[c] == 0 {
				res.empty = true
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			if !floats.Equal(sums[c], centroids[c]) {
				moved = true
				copy(centroids[c], sums[c])
			}
		}
		if !moved {
			res.converged = true
			break
		}
	}

	for i, p := range points {
		labels[i] = nearest(p, centroids)
		res.inertia += sqDist(p, centroids[labels[i]])
	}
	return res
}

func nearest(p []float64, centroids [][]float64) int {
	best, bestD := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(p, centroid); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

// silhouette is the mean silhouette coefficient. Points in singleton clusters
// score 0; k=1 scores 0. Large inputs are evaluated on an even stride sample.
func silhouette(points [][]float64, labels []int, k int) float64 {
	if k < 2 || len(points) < 2 {
		return 0
	}
	sizes := make([]int, k)
	for _, c := range labels {
		sizes[c]++
	}
	stride := (len(points) + silhouetteSample - 1) / silhouetteSample

	sum := make([]float64, k)
	var scores []float64
	for i := 0; i < len(points); i += stride {
		own := labels[i]
		if sizes[own] <= 1 {
			scores = append(scores, 0)
			continue
		}
		floats.Scale(0, sum)
		for j, q := range points {
			if j != i {
				sum[labels[j]] += floats.Distance(points[i], q, 2)
			}
		}
		a := sum[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for c := range sum {
			if c != own && sizes[c] > 0 {
				b = math.Min(b, sum[c]/float64(sizes[c]))
			}
		}
		s := 0.0
		if den := math.Max(a, b); den > 0 && !math.IsInf(b, 1) {
			s = (b - a) / den
		}
		scores = append(scores, s)
	}
	return finite(stat.Mean(scores, nil), 0)
}

func (KMeans) Metadata() AlgorithmMeta {
	return AlgorithmMeta{
		ID:          IDKMeans,
		Name:        "K-Means++ clustering",
		Description: "Seeded K-Means++ with restarts, elbow auto-K and silhouette score",
		Formula:     "argmin Σ‖x − μ_c‖²; elbow k = argmax I[k−1] − 2·I[k] + I[k+1]",
		Reference:   "Arthur, D., Vassilvitskii, S. (2007) k-means++: The advantages of careful seeding",
		SafetyClass: SafetyInformational,
		Domain:      "analytics",
		Inputs: map[string]ParamSpec{
			"points":   {Unit: "", Description: "point cloud, one row per point"},
			"k":        {Unit: "", Description: "cluster count, 0 for elbow selection"},
			"restarts": {Unit: "", Description: "independent seeded runs"},
			"seed":     {Unit: "", Description: "PRNG seed"},
		},
		Outputs: map[string]ParamSpec{
			"clusters":   {Unit: "", Description: "centroid, size, inertia and members"},
			"silhouette": {Unit: "", Description: "mean silhouette coefficient in [−1, 1]"},
		},
	}
}
