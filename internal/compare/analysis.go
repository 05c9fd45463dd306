package compare

// RolePair holds the baseline and candidate samples of one operation.
type RolePair struct {
	Baseline  Sample
	Candidate Sample
}

// SizeInput is one size label of a single run.
type SizeInput struct {
	Label           string
	BaselineBytes   int
	CandidateBytes  int
	Serialization   RolePair
	Deserialization RolePair
}

// OperationAnalysis compares the candidate codec to the baseline codec for
// one operation.
type OperationAnalysis struct {
	Time       Outcome
	Throughput Outcome
	Memory     RolePair
}

// SizeAnalysis is the analysis of one size label.
type SizeAnalysis struct {
	Label           string
	BaselineBytes   int
	CandidateBytes  int
	Compression     Outcome
	Serialization   OperationAnalysis
	Deserialization OperationAnalysis
}

// RecordAnalysis summarizes a run of baseline against candidate codec.
type RecordAnalysis struct {
	Sizes []SizeAnalysis

	AverageCompression float64
	CompressionSizes   int
	Tier               CompressionTier

	SerializationAverage   float64
	DeserializationAverage float64
	SerializationVerdict   Verdict
	DeserializationVerdict Verdict

	// CandidateFaster* are true when every defined time delta favours the
	// candidate.
	CandidateFasterSerialization   bool
	CandidateFasterDeserialization bool
}

// Analyze compares candidate to baseline codec at every size and averages
// the defined deltas.
func Analyze(sizes []SizeInput) RecordAnalysis {
	var ra RecordAnalysis
	var ser, deser, comp avg

	for _, in := range sizes {
		sa := SizeAnalysis{
			Label:           in.Label,
			BaselineBytes:   in.BaselineBytes,
			CandidateBytes:  in.CandidateBytes,
			Compression:     outcome(CompareSize(in.BaselineBytes, in.CandidateBytes)),
			Serialization:   analyzeOperation(in.Serialization),
			Deserialization: analyzeOperation(in.Deserialization),
		}
		comp.add(sa.Compression)
		ser.add(sa.Serialization.Time)
		deser.add(sa.Deserialization.Time)
		ra.Sizes = append(ra.Sizes, sa)
	}

	ra.AverageCompression, ra.CompressionSizes = comp.mean(), comp.n
	ra.Tier = TierFor(ra.AverageCompression)
	ra.SerializationAverage = ser.mean()
	ra.DeserializationAverage = deser.mean()
	ra.SerializationVerdict = VerdictFor(ra.SerializationAverage)
	ra.DeserializationVerdict = VerdictFor(ra.DeserializationAverage)
	ra.CandidateFasterSerialization = ser.n > 0 && ser.allImproved
	ra.CandidateFasterDeserialization = deser.n > 0 && deser.allImproved
	return ra
}

func analyzeOperation(p RolePair) OperationAnalysis {
	return OperationAnalysis{
		Time:       outcome(CompareTime(p.Baseline.AvgTime, p.Candidate.AvgTime)),
		Throughput: outcome(CompareThroughput(p.Baseline.OpsPerSec, p.Candidate.OpsPerSec)),
		Memory:     p,
	}
}

type avg struct {
	sum         float64
	n           int
	allImproved bool
}

func (a *avg) add(o Outcome) {
	if !o.OK() {
		return
	}
	if a.n == 0 {
		a.allImproved = true
	}
	a.sum += o.Delta.Percent
	a.n++
	a.allImproved = a.allImproved && o.Delta.Improved()
}

func (a *avg) mean() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sum / float64(a.n)
}
