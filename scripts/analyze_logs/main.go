package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

type LogStats struct {
	TotalErrors       int
	LoginSuccess      int
	LoginFailures     int
	InactiveLogins    int
	PackageSessions   int
	PackageAdjusts    int
	PackagesExpired   int
	ApprovalsFiled    int
	ApprovalsResolved map[string]int
	BackfillRuns      int
	StaffActivities   map[string]int
	ErrorPatterns     map[string]int
}

var (
	loginSuccessRe = regexp.MustCompile(`Login successful: (\S+)`)
	loginFailureRe = regexp.MustCompile(`Invalid password for user: (\S+)`)
	usedByRe       = regexp.MustCompile(`Package \d+ used in order \d+ by (\S+)`)
	adjustedByRe   = regexp.MustCompile(`Package \d+ adjusted by (\S+):`)
	expiredRe      = regexp.MustCompile(`Expired (\d+) overdue packages`)
	resolvedRe     = regexp.MustCompile(`Discount approval request \d+ (APPROVED|REJECTED) by (\S+)`)
)

func main() {
	logDir := flag.String("dir", "./logs", "directory holding the server logs")
	date := flag.String("date", time.Now().Format("2006-01-02"), "day to analyze (YYYY-MM-DD)")
	flag.Parse()

	stats := &LogStats{
		ApprovalsResolved: make(map[string]int),
		StaffActivities:   make(map[string]int),
		ErrorPatterns:     make(map[string]int),
	}

	analyzeErrorLogs(filepath.Join(*logDir, fmt.Sprintf("error-%s.log", *date)), stats)
	analyzeInfoLogs(filepath.Join(*logDir, fmt.Sprintf("info-%s.log", *date)), stats)

	printReport(*date, stats)
}

func analyzeErrorLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		stats.TotalErrors++

		if m := loginFailureRe.FindStringSubmatch(line); m != nil {
			stats.LoginFailures++
			stats.StaffActivities[m[1]]++
		}
		if strings.Contains(line, "Inactive user attempted login") {
			stats.InactiveLogins++
		}

		extractErrorPattern(line, stats)
	}
}

func analyzeInfoLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case loginSuccessRe.MatchString(line):
			stats.LoginSuccess++
			stats.StaffActivities[loginSuccessRe.FindStringSubmatch(line)[1]]++
		case usedByRe.MatchString(line):
			stats.PackageSessions++
			stats.StaffActivities[usedByRe.FindStringSubmatch(line)[1]]++
		case adjustedByRe.MatchString(line):
			stats.PackageAdjusts++
			stats.StaffActivities[adjustedByRe.FindStringSubmatch(line)[1]]++
		case expiredRe.MatchString(line):
			var n int
			fmt.Sscanf(expiredRe.FindStringSubmatch(line)[1], "%d", &n)
			stats.PackagesExpired += n
		case strings.Contains(line, "Discount approval request") && strings.Contains(line, "filed for customer"):
			stats.ApprovalsFiled++
		case resolvedRe.MatchString(line):
			stats.ApprovalsResolved[resolvedRe.FindStringSubmatch(line)[1]]++
		case strings.Contains(line, "Package backfill") && strings.Contains(line, "finished"):
			stats.BackfillRuns++
		}
	}
}

func extractErrorPattern(line string, stats *LogStats) {
	// Console lines are tab separated: time, level, caller, message
	fields := strings.Split(line, "\t")
	msg := fields[len(fields)-1]
	if i := strings.Index(msg, ":"); i > 0 {
		msg = msg[:i]
	}
	stats.ErrorPatterns[strings.TrimSpace(msg)]++
}

func printReport(date string, stats *LogStats) {
	fmt.Println("\n=== Log Analysis Report ===")
	fmt.Println("Day:", date)
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n1. Authentication Statistics:")
	fmt.Printf("   Successful Logins: %d\n", stats.LoginSuccess)
	fmt.Printf("   Failed Logins: %d\n", stats.LoginFailures)
	fmt.Printf("   Inactive Account Logins: %d\n", stats.InactiveLogins)

	fmt.Println("\n2. Package Activity:")
	fmt.Printf("   Sessions Used: %d\n", stats.PackageSessions)
	fmt.Printf("   Manual Adjustments: %d\n", stats.PackageAdjusts)
	fmt.Printf("   Packages Expired: %d\n", stats.PackagesExpired)
	fmt.Printf("   Backfill Runs: %d\n", stats.BackfillRuns)

	fmt.Println("\n3. Discount Approvals:")
	fmt.Printf("   Filed: %d\n", stats.ApprovalsFiled)
	fmt.Printf("   Approved: %d\n", stats.ApprovalsResolved["APPROVED"])
	fmt.Printf("   Rejected: %d\n", stats.ApprovalsResolved["REJECTED"])

	fmt.Println("\n4. Error Statistics:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)

	fmt.Println("\n5. Most Active Staff:")
	printTop(stats.StaffActivities, 5, "activities")

	fmt.Println("\n6. Most Common Errors:")
	printTop(stats.ErrorPatterns, 5, "occurrences")
}

func printTop(counts map[string]int, limit int, unit string) {
	type entry struct {
		key   string
		count int
	}

	var entries []entry
	for k, n := range counts {
		entries = append(entries, entry{k, n})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})

	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Printf("   %s: %d %s\n", e.key, e.count, unit)
	}
}
