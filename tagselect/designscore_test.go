// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tagselect

import "testing"

func TestCombineDesignScoresMultipliesAcrossFiles(t *testing.T) {
	files := []DesignScoreFile{
		{Scores: []ScoreEntry{{Name: "rs1", Score: 0.8}}, Threshold: 0, Scale: 1},
		{Scores: []ScoreEntry{{Name: "rs1", Score: 0.5}}, Threshold: 0, Scale: 1},
	}
	agg := CombineDesignScores(files)
	if got, want := agg["rs1"], 0.4; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCombineDesignScoresZeroesBelowThreshold(t *testing.T) {
	files := []DesignScoreFile{
		{Scores: []ScoreEntry{{Name: "rs1", Score: 0.3}}, Threshold: 0.5, Scale: 1},
	}
	agg := CombineDesignScores(files)
	if got, want := agg["rs1"], 0.0; got != want {
		t.Errorf("got %v, want %v (below threshold)", got, want)
	}
}

func TestCombineDesignScoresAppliesScale(t *testing.T) {
	files := []DesignScoreFile{
		{Scores: []ScoreEntry{{Name: "rs1", Score: 0.5}}, Threshold: 0, Scale: 2},
	}
	agg := CombineDesignScores(files)
	if got, want := agg["rs1"], 1.0; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
