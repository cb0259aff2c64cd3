package main

import (
	"fmt"

	echoapi "github.com/trezcool/taqyeem/apps/api/echo"
	"github.com/trezcool/taqyeem/core"
)

// token issues an API token, for scripts and for trying the API out.
func (cli *commandLine) token(sess core.Session) error {
	token, err := echoapi.GenerateToken(cli.conf, echoapi.NewClaims(cli.conf, sess))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, token)
	return nil
}
