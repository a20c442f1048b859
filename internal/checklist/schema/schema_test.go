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

package schema

import (
	"encoding/json"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SchemaTestSuite struct {
	suite.Suite
}

func (s *SchemaTestSuite) TestGet() {
	for _, version := range []string{"v1-alpha.1", "v1"} {
		data, err := Get(version)
		s.Require().NoError(err)

		var doc map[string]any
		s.Require().NoError(json.Unmarshal(data, &doc), "schema %s must be valid JSON", version)
		s.Equal("object", doc["type"])
	}
}

func (s *SchemaTestSuite) TestGet_InvalidVersion() {
	data, err := Get("v0")
	s.Require().Error(err)
	s.Nil(data)
}

func (s *SchemaTestSuite) TestVersionsAreSorted() {
	versions, err := Versions()
	s.Require().NoError(err)
	s.Equal([]string{"v1-alpha.1", "v1"}, versions)

	latest, err := Latest()
	s.Require().NoError(err)
	s.Equal("v1", latest)
}

func (s *SchemaTestSuite) TestCompareSchemaVersions() {
	cases := []struct {
		a, b   string
		expect int
	}{
		{"v1-alpha.1", "v1-beta.2", -1},
		{"v1-beta.2", "v1-beta.11", -1},
		{"v1-beta.11", "v1-rc.1", -1},
		{"v1-rc.1", "v1", -1},
		{"v1", "v1", 0},
		{"v2", "v1", 1},
		{"v1", "v1-alpha.1", 1},
		{"v1", "invalid", -1},
		{"invalid", "v1", 1},
		{"invalid", "invalid2", -1},
	}
	for _, c := range cases {
		s.Run(fmt.Sprintf("%s_vs_%s", c.a, c.b), func() {
			res := compareSchemaVersions(c.a, c.b)
			switch {
			case c.expect < 0:
				s.Less(res, 0)
			case c.expect > 0:
				s.Greater(res, 0)
			default:
				s.Equal(0, res)
			}
		})
	}
}

func TestSortSchemaVersions(t *testing.T) {
	versions := []string{"v1-beta.2", "v1", "v1-alpha.1", "v1-beta.11", "v1-rc.1"}
	slices.SortFunc(versions, compareSchemaVersions)
	assert.Equal(t, []string{"v1-alpha.1", "v1-beta.2", "v1-beta.11", "v1-rc.1", "v1"}, versions)
}

func TestSchemaTestSuite(t *testing.T) {
	suite.Run(t, new(SchemaTestSuite))
}
