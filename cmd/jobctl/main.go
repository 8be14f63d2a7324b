// jobctl is a command-line front door for the job board data layer.
//
// Usage:
//
//	jobctl <command> [flags]
//
// Commands: create-job, list-jobs, get-job, update-job, delete-job,
// create-company, list-companies, get-company, update-company,
// delete-company.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/blockedby/jobboard/internal/config"
	"github.com/blockedby/jobboard/internal/database"
	"github.com/blockedby/jobboard/internal/logger"
	"github.com/blockedby/jobboard/internal/repository"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: jobctl <command> [flags]")
		os.Exit(2)
	}

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	jobs := repository.NewJobsRepository(db.Pool, log)
	companies := repository.NewCompaniesRepository(db.Pool, log)

	if err := run(ctx, os.Args[1], os.Args[2:], jobs, companies); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Fatal().Err(err).Msg("not found")
		case errors.Is(err, repository.ErrBadRequest):
			log.Fatal().Err(err).Msg("invalid request")
		default:
			log.Fatal().Err(err).Msg("internal error")
		}
	}
}

func run(ctx context.Context, command string, args []string, jobs *repository.JobsRepository, companies *repository.CompaniesRepository) error {
	switch command {
	case "create-job":
		return createJob(ctx, args, jobs)
	case "list-jobs":
		return listJobs(ctx, args, jobs)
	case "get-job":
		return getJob(ctx, args, jobs)
	case "update-job":
		return updateJob(ctx, args, jobs)
	case "delete-job":
		return deleteJob(ctx, args, jobs)
	case "create-company":
		return createCompany(ctx, args, companies)
	case "list-companies":
		return listCompanies(ctx, args, companies)
	case "get-company":
		return getCompany(ctx, args, companies)
	case "update-company":
		return updateCompany(ctx, args, companies)
	case "delete-company":
		return deleteCompany(ctx, args, companies)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// printJSON writes a result to stdout as indented JSON.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// visited reports which flags were set on the command line, so updates
// only patch what the caller actually passed.
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func createJob(ctx context.Context, args []string, jobs *repository.JobsRepository) error {
	fs := flag.NewFlagSet("create-job", flag.ExitOnError)
	title := fs.String("title", "", "job title")
	salary := fs.Int("salary", 0, "yearly salary")
	equity := fs.Float64("equity", 0, "equity share in [0,1]")
	company := fs.String("company", "", "company handle")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := visited(fs)

	job := &repository.Job{Title: *title, CompanyHandle: *company}
	if set["salary"] {
		job.Salary = salary
	}
	if set["equity"] {
		job.Equity = equity
	}
	if err := jobs.Create(ctx, job); err != nil {
		return err
	}
	return printJSON(job)
}

func listJobs(ctx context.Context, args []string, jobs *repository.JobsRepository) error {
	fs := flag.NewFlagSet("list-jobs", flag.ExitOnError)
	title := fs.String("title", "", "title substring filter")
	minSalary := fs.Int("min-salary", 0, "inclusive salary lower bound")
	hasEquity := fs.Bool("has-equity", false, "only jobs with equity > 0")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := visited(fs)

	filter := repository.JobFilter{Title: *title, HasEquity: *hasEquity}
	if set["min-salary"] {
		filter.MinSalary = minSalary
	}
	listed, err := jobs.List(ctx, filter)
	if err != nil {
		return err
	}
	return printJSON(listed)
}

func getJob(ctx context.Context, args []string, jobs *repository.JobsRepository) error {
	fs := flag.NewFlagSet("get-job", flag.ExitOnError)
	id := fs.Int("id", 0, "job id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	job, err := jobs.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(job)
}

func updateJob(ctx context.Context, args []string, jobs *repository.JobsRepository) error {
	fs := flag.NewFlagSet("update-job", flag.ExitOnError)
	id := fs.Int("id", 0, "job id")
	title := fs.String("title", "", "new title")
	salary := fs.Int("salary", 0, "new salary")
	equity := fs.Float64("equity", 0, "new equity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := visited(fs)

	var patch repository.JobPatch
	if set["title"] {
		patch.Title = title
	}
	if set["salary"] {
		patch.Salary = salary
	}
	if set["equity"] {
		patch.Equity = equity
	}
	job, err := jobs.Update(ctx, *id, patch)
	if err != nil {
		return err
	}
	return printJSON(job)
}

func deleteJob(ctx context.Context, args []string, jobs *repository.JobsRepository) error {
	fs := flag.NewFlagSet("delete-job", flag.ExitOnError)
	id := fs.Int("id", 0, "job id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := jobs.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("deleted job %d\n", *id)
	return nil
}

func createCompany(ctx context.Context, args []string, companies *repository.CompaniesRepository) error {
	fs := flag.NewFlagSet("create-company", flag.ExitOnError)
	handle := fs.String("handle", "", "company handle")
	name := fs.String("name", "", "company name")
	description := fs.String("description", "", "company description")
	employees := fs.Int("employees", 0, "employee count")
	logo := fs.String("logo", "", "logo url")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := visited(fs)

	company := &repository.Company{Handle: *handle, Name: *name, Description: *description}
	if set["employees"] {
		company.NumEmployees = employees
	}
	if set["logo"] {
		company.LogoURL = logo
	}
	if err := companies.Create(ctx, company); err != nil {
		return err
	}
	return printJSON(company)
}

func listCompanies(ctx context.Context, args []string, companies *repository.CompaniesRepository) error {
	fs := flag.NewFlagSet("list-companies", flag.ExitOnError)
	name := fs.String("name", "", "name substring filter")
	minEmployees := fs.Int("min-employees", 0, "inclusive employee lower bound")
	maxEmployees := fs.Int("max-employees", 0, "inclusive employee upper bound")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := visited(fs)

	filter := repository.CompanyFilter{Name: *name}
	if set["min-employees"] {
		filter.MinEmployees = minEmployees
	}
	if set["max-employees"] {
		filter.MaxEmployees = maxEmployees
	}
	listed, err := companies.List(ctx, filter)
	if err != nil {
		return err
	}
	return printJSON(listed)
}

func getCompany(ctx context.Context, args []string, companies *repository.CompaniesRepository) error {
	fs := flag.NewFlagSet("get-company", flag.ExitOnError)
	handle := fs.String("handle", "", "company handle")
	if err := fs.Parse(args); err != nil {
		return err
	}
	company, err := companies.Get(ctx, *handle)
	if err != nil {
		return err
	}
	return printJSON(company)
}

func updateCompany(ctx context.Context, args []string, companies *repository.CompaniesRepository) error {
	fs := flag.NewFlagSet("update-company", flag.ExitOnError)
	handle := fs.String("handle", "", "company handle")
	name := fs.String("name", "", "new name")
	description := fs.String("description", "", "new description")
	employees := fs.Int("employees", 0, "new employee count")
	logo := fs.String("logo", "", "new logo url")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := visited(fs)

	var patch repository.CompanyPatch
	if set["name"] {
		patch.Name = name
	}
	if set["description"] {
		patch.Description = description
	}
	if set["employees"] {
		patch.NumEmployees = employees
	}
	if set["logo"] {
		patch.LogoURL = logo
	}
	company, err := companies.Update(ctx, *handle, patch)
	if err != nil {
		return err
	}
	return printJSON(company)
}

func deleteCompany(ctx context.Context, args []string, companies *repository.CompaniesRepository) error {
	fs := flag.NewFlagSet("delete-company", flag.ExitOnError)
	handle := fs.String("handle", "", "company handle")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := companies.Delete(ctx, *handle); err != nil {
		return err
	}
	fmt.Printf("deleted company %s\n", *handle)
	return nil
}
