// Copyright 2025 The Deployah Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package checklist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/deployah-dev/activation/internal/activation"
)

type StoreTestSuite struct {
	suite.Suite
	clock     *clocktesting.FakeClock
	store     *Store
	checklist *Checklist
}

func (s *StoreTestSuite) SetupTest() {
	s.clock = clocktesting.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	s.store = NewStore(filepath.Join(s.T().TempDir(), ConfigDir, "state.yaml"), s.clock)
	s.checklist = &Checklist{
		APIVersion: "v1",
		Steps: []activation.Step{
			{ID: "a", Title: "A"},
			{ID: "b", Title: "B"},
			{ID: "c", Title: "C"},
		},
	}
}

func (s *StoreTestSuite) TestMissingFileIsNotLoaded() {
	state, err := s.store.Read()
	s.Require().NoError(err)
	s.Nil(state)

	completion, err := s.store.Completion()
	s.Require().NoError(err)
	s.Nil(completion)
	s.False(completion.Loaded())
}

func (s *StoreTestSuite) TestMarkSteps() {
	state, err := s.store.MarkSteps(s.checklist, []string{"a", "c"}, true)
	s.Require().NoError(err)
	s.Equal(map[string]bool{"a": true, "c": true}, state.Completed)
	s.Equal(s.clock.Now(), state.UpdatedAt)

	completion, err := s.store.Completion()
	s.Require().NoError(err)
	s.True(completion.Done("a"))
	s.False(completion.Done("b"))

	s.clock.Step(time.Hour)
	state, err = s.store.MarkSteps(s.checklist, []string{"a"}, false)
	s.Require().NoError(err)
	s.Equal(map[string]bool{"c": true}, state.Completed)

	read, err := s.store.Read()
	s.Require().NoError(err)
	s.Equal(s.clock.Now(), read.UpdatedAt)
	s.Equal([]string{"c"}, CompletedIDs(s.checklist, read))
}

func (s *StoreTestSuite) TestMarkStepsRejectsUnknownIDs() {
	_, err := s.store.MarkSteps(s.checklist, []string{"a", "zzz"}, true)
	s.Require().Error(err)
	s.Contains(err.Error(), "unknown step ids: zzz")

	state, err := s.store.Read()
	s.Require().NoError(err)
	s.Nil(state, "nothing is written on error")
}

func (s *StoreTestSuite) TestReset() {
	_, err := s.store.MarkSteps(s.checklist, []string{"a", "b"}, true)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Reset())

	completion, err := s.store.Completion()
	s.Require().NoError(err)
	s.True(completion.Loaded(), "reset keeps the completion loaded")
	pct, ok := activation.PercentageDone(s.checklist.Steps, completion)
	s.True(ok)
	s.Zero(pct)
}

func (s *StoreTestSuite) TestCorruptFile() {
	s.Require().NoError(os.MkdirAll(filepath.Dir(s.store.Path()), 0o755))
	s.Require().NoError(os.WriteFile(s.store.Path(), []byte("completed: [unclosed"), 0o644))

	_, err := s.store.Read()
	s.Require().Error(err)
	s.Contains(err.Error(), "failed to parse completion file")
}

func (s *StoreTestSuite) TestEmptyFileIsLoaded() {
	s.Require().NoError(os.MkdirAll(filepath.Dir(s.store.Path()), 0o755))
	s.Require().NoError(os.WriteFile(s.store.Path(), []byte("completed: {}\n"), 0o644))

	completion, err := s.store.Completion()
	s.Require().NoError(err)
	s.NotNil(completion)
	s.Empty(completion)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
