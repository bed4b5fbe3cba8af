// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// AssumeNormal is an assumption that a sample is normally distributed.
// The summary statistic is the sample mean and comparisons are done
// using the two-sample Welch t-test.
var AssumeNormal = assumeNormal{}

type assumeNormal struct{}

var _ Assumption = assumeNormal{}

func (assumeNormal) Summary(s *Sample, confidence float64) Summary {
	n := len(s.Values)
	if n == 0 {
		return Summary{Center: math.NaN(), Lo: math.NaN(), Hi: math.NaN(), Confidence: confidence}
	}
	sample := s.sample()
	mean := sample.Mean()
	if n < 2 {
		return Summary{
			Center:     mean,
			Lo:         math.Inf(-1),
			Hi:         math.Inf(1),
			Confidence: 1,
			Warnings:   []error{fmt.Errorf("need >= 2 samples for confidence interval at level %v", confidence)},
		}
	}

	// Student's t interval around the mean.
	se := sample.StdDev() / math.Sqrt(float64(n))
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - (1-confidence)/2)
	return Summary{
		Center:     mean,
		Lo:         mean - t*se,
		Hi:         mean + t*se,
		Confidence: confidence,
	}
}

func (assumeNormal) Compare(s1, s2 *Sample) Comparison {
	alpha := DefaultThresholds.CompareAlpha
	if s1.Thresholds != nil {
		alpha = s1.Thresholds.CompareAlpha
	}
	t, err := stats.TwoSampleWelchTTest(s1.sample(), s2.sample(), stats.LocationDiffers)
	if err != nil {
		// The t-test failed. Report as if there's no
		// significant difference, along with the error.
		return Comparison{P: 1, N1: len(s1.Values), N2: len(s2.Values), Alpha: alpha, Warnings: []error{err}}
	}
	return Comparison{P: t.P, N1: len(s1.Values), N2: len(s2.Values), Alpha: alpha}
}
