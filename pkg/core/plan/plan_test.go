package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPlanYAML = `
name: demo
description: 演示计划
tasks:
  - id: fetch_a
    name: 抓取A
    handler: echo
    params:
      message: hello
  - id: fetch_b
    handler: echo
  - id: merge
    handler: echo
    depends_on: [fetch_a, fetch_b]
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(validPlanYAML))
	require.NoError(t, err)

	assert.Equal(t, "demo", p.Name)
	require.Len(t, p.Tasks, 3)
	assert.Equal(t, "fetch_a", p.Tasks[0].ID)
	assert.Equal(t, "hello", p.Tasks[0].Params["message"])
	assert.Equal(t, []string{"fetch_a", "fetch_b"}, p.Tasks[2].DependsOn)
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"格式错误", "name: [broken"},
		{"缺少名称", "tasks:\n  - id: a\n    handler: echo"},
		{"没有任务", "name: empty"},
		{"任务缺少id", "name: demo\ntasks:\n  - handler: echo"},
		{"任务缺少handler", "name: demo\ntasks:\n  - id: a"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestDescriptors(t *testing.T) {
	p, err := Parse([]byte(validPlanYAML))
	require.NoError(t, err)

	descs := p.Descriptors()
	require.Len(t, descs, 3)

	// 顺序与计划中一致
	assert.Equal(t, "fetch_a", descs[0].ID)
	assert.Equal(t, "抓取A", descs[0].Name)
	assert.Equal(t, []string{"fetch_a", "fetch_b"}, descs[2].Dependencies)

	// handler被注入载荷
	assert.Equal(t, "echo", descs[0].Payload.GetString("handler"))
	assert.Equal(t, "hello", descs[0].Payload.GetString("message"))
}
