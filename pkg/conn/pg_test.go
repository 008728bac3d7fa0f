package conn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	testCases := []struct {
		desc string
		opt  Option
		want string
	}{
		{
			desc: "defaults",
			opt:  Option{},
			want: "postgres://localhost:5432?sslmode=disable",
		},
		{
			desc: "full",
			opt: Option{
				Host:     "db",
				Port:     6543,
				User:     "trader",
				Password: "p@ss",
				Database: "journal",
				SSLMode:  "require",
				Params:   map[string]string{"application_name": "broker", "": "skip"},
			},
			want: "postgres://trader:p%40ss@db:6543/journal?application_name=broker&sslmode=require",
		},
		{
			desc: "user without password",
			opt:  Option{User: "trader", Database: "journal"},
			want: "postgres://trader@localhost:5432/journal?sslmode=disable",
		},
		{
			desc: "conn string wins",
			opt:  Option{Host: "ignored", ConnString: "host=x user=y"},
			want: "host=x user=y",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.opt.DSN())
		})
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	assert.Nil(t, c.DB())
	assert.NoError(t, c.Close())
	assert.Error(t, c.Migrate())
}
