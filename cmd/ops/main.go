// Command ops runs support tasks against a live deployment. Usage:
//
//	ops reset-password -subdomain acme -email admin@acme.com -password <new>
//	ops check
//	ops soft-delete-tenant -id <uuid>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/ops"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/internal/repositories"
	"github.com/kidaholy/Pharmacy-inventory-system-sub002/pkg/database"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	medicineRepo := repositories.NewMedicineRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	prescriptionRepo := repositories.NewPrescriptionRepo(pool)

	ctx := context.Background()

	switch os.Args[1] {
	case "reset-password":
		fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
		subdomain := fs.String("subdomain", "", "tenant subdomain")
		email := fs.String("email", "", "user email")
		password := fs.String("password", "", "new password")
		fs.Parse(os.Args[2:])
		if *subdomain == "" || *email == "" || *password == "" {
			log.Fatal("reset-password requires -subdomain, -email and -password")
		}

		resetter := ops.NewPasswordResetter(tenantRepo, userRepo)
		if err := resetter.Reset(ctx, *subdomain, *email, *password); err != nil {
			log.Fatalf("Password reset failed: %v", err)
		}
		fmt.Println("Password updated")

	case "check":
		checker := ops.NewConsistencyChecker(tenantRepo, userRepo)
		report, err := checker.Run(ctx)
		if err != nil {
			log.Fatalf("Consistency check failed: %v", err)
		}
		fmt.Printf("Tenants checked: %d (%d active)\n", report.TenantsChecked, report.ActiveTenants)
		for _, user := range report.OrphanedUsers {
			fmt.Printf("orphaned user: %s (%s) tenant=%s\n", user.Email, user.ID, user.TenantID)
		}
		for _, tenantID := range report.TenantsNoAdmin {
			fmt.Printf("tenant without admin: %s\n", tenantID)
		}
		if len(report.OrphanedUsers) > 0 || len(report.TenantsNoAdmin) > 0 {
			os.Exit(1)
		}
		fmt.Println("No problems found")

	case "soft-delete-tenant":
		fs := flag.NewFlagSet("soft-delete-tenant", flag.ExitOnError)
		id := fs.String("id", "", "tenant id")
		fs.Parse(os.Args[2:])
		tenantID, err := uuid.Parse(*id)
		if err != nil {
			log.Fatalf("Invalid tenant id %q: %v", *id, err)
		}

		deleter := ops.NewTenantDeleter(tenantRepo, userRepo, medicineRepo, customerRepo, prescriptionRepo)
		result, err := deleter.SoftDelete(ctx, tenantID)
		if err != nil {
			log.Fatalf("Soft delete failed: %v", err)
		}
		fmt.Printf("Soft-deleted tenant %s: %d users, %d medicines, %d customers, %d prescriptions\n",
			result.TenantID, result.Users, result.Medicines, result.Customers, result.Prescriptions)

	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ops <reset-password|check|soft-delete-tenant> [flags]")
}
