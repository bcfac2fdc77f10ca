// Package testutil creates the fixtures shared by the tests of the apps.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/student"
	"github.com/trezcool/schoolops/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo student.Repository, code, fullName, className string, createdAt ...time.Time) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	st, err := repo.CreateStudent(context.Background(), student.Student{
		Code:        code,
		FullName:    fullName,
		DateOfBirth: core.NewDate(2020, time.March, 14),
		Gender:      student.GenderFemale,
		ClassName:   className,
		AgeGroup:    core.AgeGroup4To5,
		ParentName:  "Parent of " + fullName,
		ParentEmail: code + "@parents.test",
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}
