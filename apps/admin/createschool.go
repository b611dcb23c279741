package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

func (cli *commandLine) createSchool(name, email, phone, address, motto string) error {
	now := time.Now().UTC()
	sch := school.School{
		Name:      core.CleanString(name),
		Address:   core.CleanString(address),
		Email:     core.CleanString(email, true /* lower */),
		Phone:     core.CleanString(phone),
		Motto:     core.CleanString(motto),
		CreatedAt: now,
		UpdatedAt: now,
	}
	active := true
	sch.IsActive = &active

	sch, err := cli.schRepo.CreateSchool(context.Background(), sch)
	if err != nil {
		return err
	}
	fmt.Printf("school %q created (id: %s)\n", sch.Name, sch.ID)
	return nil
}
