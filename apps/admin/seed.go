package main

import (
	"context"

	"github.com/shulesys/shule/core/school"
)

func (cli *commandLine) seed() error {
	seeder := school.NewSeeder(cli.conf, cli.usrRepo, cli.schlRepo, cli.appLog)
	return seeder.Run(context.Background())
}
