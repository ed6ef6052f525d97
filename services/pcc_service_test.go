package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"dealer-portal-api/models"
)

func newTestPCCService(t *testing.T, opts PCCServiceOptions) (*PCCService, *AuditService) {
	t.Helper()
	db := newTestDB(t)
	audit := NewAuditService(db)
	return NewPCCService(db, audit, opts), audit
}

func TestCreateRequiresDealerRole(t *testing.T) {
	svc, _ := newTestPCCService(t, PCCServiceOptions{})

	if _, err := svc.Create(nil, validPCCInput()); !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("nil actor: got %v, want ErrAuthenticationRequired", err)
	}
	if _, err := svc.Create(testAdminUser(), validPCCInput()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin actor: got %v, want ErrForbidden", err)
	}
}

func TestCreateSubmission(t *testing.T) {
	svc, audit := newTestPCCService(t, PCCServiceOptions{})
	actor := testDealerUser()

	sub, err := svc.Create(actor, validPCCInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if sub.Status != models.StatusSubmitted {
		t.Errorf("status = %q, want %q", sub.Status, models.StatusSubmitted)
	}
	wantPrefix := fmt.Sprintf("PCC-IN-%d-", time.Now().Year())
	if !strings.HasPrefix(sub.ReferenceNumber, wantPrefix) {
		t.Errorf("reference %q does not start with %q", sub.ReferenceNumber, wantPrefix)
	}
	if len(sub.StatusHistory) != 1 {
		t.Fatalf("history length = %d, want 1", len(sub.StatusHistory))
	}
	if sub.StatusHistory[0].Status != models.StatusSubmitted {
		t.Errorf("history[0].Status = %q, want %q", sub.StatusHistory[0].Status, models.StatusSubmitted)
	}
	if sub.StatusHistory[0].ChangedBy != actor.ID {
		t.Errorf("history[0].ChangedBy = %q, want %q", sub.StatusHistory[0].ChangedBy, actor.ID)
	}
	if sub.CreatedBy != actor.ID {
		t.Errorf("CreatedBy = %q, want %q", sub.CreatedBy, actor.ID)
	}

	logs, err := audit.GetByAction(models.AuditActionCreate)
	if err != nil {
		t.Fatalf("audit lookup: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("audit records = %d, want 1", len(logs))
	}
	if logs[0].Module != models.ModuleDealerPCC {
		t.Errorf("audit module = %q, want %q", logs[0].Module, models.ModuleDealerPCC)
	}
}

func TestCreateNormalizesIdentifiers(t *testing.T) {
	svc, _ := newTestPCCService(t, PCCServiceOptions{})

	input := validPCCInput()
	input.VIN = "wvwzzz3czwe123456"
	input.RegistrationNo = "dl 01 ab 1234"
	input.DamagePartNumber = "04e145721b"

	sub, err := svc.Create(testDealerUser(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sub.VIN != "WVWZZZ3CZWE123456" {
		t.Errorf("VIN = %q, want uppercase", sub.VIN)
	}
	if sub.RegistrationNo != "DL01AB1234" {
		t.Errorf("RegistrationNo = %q, want spaces stripped and uppercased", sub.RegistrationNo)
	}
	if sub.DamagePartNumber != "04E145721B" {
		t.Errorf("DamagePartNumber = %q, want uppercase", sub.DamagePartNumber)
	}
}

func TestCreateReferenceNumbersAreSequential(t *testing.T) {
	svc, _ := newTestPCCService(t, PCCServiceOptions{})
	actor := testDealerUser()

	first, err := svc.Create(actor, validPCCInput())
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.Create(actor, validPCCInput())
	if err != nil {
		t.Fatalf("second create: %v", err)
	}

	year := time.Now().Year()
	wantFirst := fmt.Sprintf("PCC-IN-%d-1000", year)
	wantSecond := fmt.Sprintf("PCC-IN-%d-1001", year)
	if first.ReferenceNumber != wantFirst {
		t.Errorf("first reference = %q, want %q", first.ReferenceNumber, wantFirst)
	}
	if second.ReferenceNumber != wantSecond {
		t.Errorf("second reference = %q, want %q", second.ReferenceNumber, wantSecond)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, audit := newTestPCCService(t, PCCServiceOptions{})
	actor := testDealerUser()

	tests := []struct {
		name   string
		mutate func(*PCCInput)
		field  string
	}{
		{"missing model", func(in *PCCInput) { in.Model = "" }, "model"},
		{"bad vin", func(in *PCCInput) { in.VIN = "SHORT" }, "vin"},
		{"vin with forbidden letter", func(in *PCCInput) { in.VIN = "IVWZZZ3CZWE123456" }, "vin"},
		{"bad registration", func(in *PCCInput) { in.RegistrationNo = "12345" }, "registration_no"},
		{"future production date", func(in *PCCInput) { in.ProductionDate = time.Now().AddDate(1, 0, 0) }, "production_date"},
		{"missing subtopic", func(in *PCCInput) { in.Subtopic = "" }, "subtopic"},
		{"zero mileage", func(in *PCCInput) { in.Mileage = 0 }, "mileage"},
		{"future repair date", func(in *PCCInput) { in.RepairDate = time.Now().AddDate(0, 0, 2) }, "repair_date"},
		{"non numeric diss ticket", func(in *PCCInput) { s := "AB123"; in.DISSTicketNo = &s }, "diss_ticket_no"},
		{"bad part number", func(in *PCCInput) { in.DamagePartNumber = "04E-145-721" }, "damage_part_number"},
		{"declaration not accepted", func(in *PCCInput) { in.DeclarationAccepted = false }, "declaration_accepted"},
		{"missing fault code", func(in *PCCInput) { in.FaultCode = "" }, "fault_code"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validPCCInput()
			tc.mutate(&input)
			_, err := svc.Create(actor, input)
			verrs, ok := AsValidationErrors(err)
			if !ok {
				t.Fatalf("got %v, want ValidationErrors", err)
			}
			if _, found := verrs[tc.field]; !found {
				t.Errorf("no error for field %q in %v", tc.field, verrs)
			}
		})
	}

	logs, err := audit.GetAll()
	if err != nil {
		t.Fatalf("audit lookup: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("failed creations wrote %d audit records, want 0", len(logs))
	}
}

func TestConditionThresholds(t *testing.T) {
	svc, _ := newTestPCCService(t, PCCServiceOptions{})
	actor := testDealerUser()

	past := time.Now().AddDate(0, -2, 0)

	tests := []struct {
		name   string
		mutate func(*PCCInput)
		field  string
		wantOK bool
	}{
		{
			"warranty four claims rejected",
			func(in *PCCInput) { in.NumberOfClaims = 4 },
			"number_of_claims", false,
		},
		{
			"warranty five claims accepted",
			func(in *PCCInput) { in.NumberOfClaims = 5 },
			"", true,
		},
		{
			"post warranty nine claims rejected",
			func(in *PCCInput) {
				in.ConditionType = models.ConditionPostWarrantyCases
				in.NumberOfClaims = 9
			},
			"number_of_claims", false,
		},
		{
			"post warranty ten claims accepted",
			func(in *PCCInput) {
				in.ConditionType = models.ConditionPostWarrantyCases
				in.NumberOfClaims = 10
			},
			"", true,
		},
		{
			"countermeasure without date rejected",
			func(in *PCCInput) {
				in.ConditionType = models.ConditionAfterCountermeasure
				in.NumberOfClaims = 3
			},
			"countermeasure_date", false,
		},
		{
			"countermeasure with date accepted",
			func(in *PCCInput) {
				in.ConditionType = models.ConditionAfterCountermeasure
				in.NumberOfClaims = 3
				in.CountermeasureDate = &past
			},
			"", true,
		},
		{
			"breakdown two claims rejected",
			func(in *PCCInput) {
				in.ConditionType = models.ConditionBreakdownCases
				in.NumberOfClaims = 2
			},
			"number_of_claims", false,
		},
		{
			"repeat repairs one repair rejected",
			func(in *PCCInput) {
				in.ConditionType = models.ConditionRepeatRepairs
				in.NumberOfRepairs = 1
			},
			"number_of_repairs", false,
		},
		{
			"repeat repairs two repairs accepted",
			func(in *PCCInput) {
				in.ConditionType = models.ConditionRepeatRepairs
				in.NumberOfRepairs = 2
			},
			"", true,
		},
		{
			"tpi unavailable needs zero result",
			func(in *PCCInput) {
				one := 1
				in.ConditionType = models.ConditionTPIUnavailable
				in.TPIResult = &one
				in.RepairSuccess = &one
			},
			"tpi_result", false,
		},
		{
			"tpi unavailable zero result accepted",
			func(in *PCCInput) {
				zero := 0
				in.ConditionType = models.ConditionTPIUnavailable
				in.TPIResult = &zero
			},
			"", true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validPCCInput()
			tc.mutate(&input)
			_, err := svc.Create(actor, input)
			if tc.wantOK {
				if err != nil {
					t.Fatalf("create: %v", err)
				}
				return
			}
			verrs, ok := AsValidationErrors(err)
			if !ok {
				t.Fatalf("got %v, want ValidationErrors", err)
			}
			if _, found := verrs[tc.field]; !found {
				t.Errorf("no error for field %q in %v", tc.field, verrs)
			}
		})
	}
}

func TestNewModelLaunchRepairWindow(t *testing.T) {
	svc, _ := newTestPCCService(t, PCCServiceOptions{})
	actor := testDealerUser()

	saleDate := time.Now().AddDate(0, -6, 0)

	input := validPCCInput()
	input.ConditionType = models.ConditionNewModelLaunch
	input.NumberOfClaims = 3
	input.SaleDate = &saleDate
	input.RepairDate = saleDate.AddDate(0, 1, 0)
	if _, err := svc.Create(actor, input); err != nil {
		t.Fatalf("repair inside window: %v", err)
	}

	input = validPCCInput()
	input.ConditionType = models.ConditionNewModelLaunch
	input.NumberOfClaims = 3
	input.SaleDate = &saleDate
	input.RepairDate = saleDate.AddDate(0, 4, 0)
	_, err := svc.Create(actor, input)
	verrs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("repair outside window: got %v, want ValidationErrors", err)
	}
	if _, found := verrs["repair_date"]; !found {
		t.Errorf("no error for repair_date in %v", verrs)
	}
}

func TestConditionOverrides(t *testing.T) {
	svc, _ := newTestPCCService(t, PCCServiceOptions{})
	actor := testDealerUser()

	input := validPCCInput()
	input.WarrantyPeriod = models.WarrantyPeriodAny
	sub, err := svc.Create(actor, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sub.WarrantyPeriod != models.WarrantyPeriodWithin {
		t.Errorf("warranty_cases period = %q, want %q", sub.WarrantyPeriod, models.WarrantyPeriodWithin)
	}

	input = validPCCInput()
	input.ConditionType = models.ConditionBreakdownCases
	input.NumberOfClaims = 3
	input.Breakdown = false
	sub, err = svc.Create(actor, input)
	if err != nil {
		t.Fatalf("create breakdown: %v", err)
	}
	if !sub.Breakdown {
		t.Error("breakdown_cases did not force Breakdown=true")
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, audit := newTestPCCService(t, PCCServiceOptions{})
	dealer := testDealerUser()
	admin := testAdminUser()

	sub, err := svc.Create(dealer, validPCCInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UpdateStatus(dealer, sub.ID, models.StatusUnderReview, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("dealer status change: got %v, want ErrForbidden", err)
	}

	updated, err := svc.UpdateStatus(admin, sub.ID, models.StatusUnderReview, "")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != models.StatusUnderReview {
		t.Errorf("status = %q, want %q", updated.Status, models.StatusUnderReview)
	}
	if len(updated.StatusHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(updated.StatusHistory))
	}
	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	if last.Status != updated.Status {
		t.Errorf("last history status %q != submission status %q", last.Status, updated.Status)
	}
	if last.ChangedBy != admin.ID {
		t.Errorf("last history ChangedBy = %q, want %q", last.ChangedBy, admin.ID)
	}
	if updated.LastUpdatedBy == nil || *updated.LastUpdatedBy != admin.ID {
		t.Errorf("LastUpdatedBy = %v, want %q", updated.LastUpdatedBy, admin.ID)
	}

	logs, err := audit.GetByAction(models.AuditActionStatusChange)
	if err != nil {
		t.Fatalf("audit lookup: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("status change audit records = %d, want 1", len(logs))
	}
}

func TestUpdateStatusMoreInfoRequiresNotes(t *testing.T) {
	svc, _ := newTestPCCService(t, PCCServiceOptions{})
	admin := testAdminUser()

	sub, err := svc.Create(testDealerUser(), validPCCInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.UpdateStatus(admin, sub.ID, models.StatusMoreInfoRequired, "   ")
	verrs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("got %v, want ValidationErrors", err)
	}
	if _, found := verrs["notes"]; !found {
		t.Errorf("no error for notes in %v", verrs)
	}

	updated, err := svc.UpdateStatus(admin, sub.ID, models.StatusMoreInfoRequired, "Please attach photos")
	if err != nil {
		t.Fatalf("update with notes: %v", err)
	}
	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	if last.Notes == nil || *last.Notes != "Please attach photos" {
		t.Errorf("history notes = %v, want %q", last.Notes, "Please attach photos")
	}
}

func TestUpdateStatusUnknownSubmission(t *testing.T) {
	svc, audit := newTestPCCService(t, PCCServiceOptions{})

	_, err := svc.UpdateStatus(testAdminUser(), "no-such-id", models.StatusApproved, "")
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("got %v, want ErrSubmissionNotFound", err)
	}

	logs, err := audit.GetAll()
	if err != nil {
		t.Fatalf("audit lookup: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("failed update wrote %d audit records, want 0", len(logs))
	}
}

func TestUpdateStatusTerminalLock(t *testing.T) {
	admin := testAdminUser()

	// Default policy: terminal statuses can be reopened.
	svc, _ := newTestPCCService(t, PCCServiceOptions{})
	sub, err := svc.Create(testDealerUser(), validPCCInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(admin, sub.ID, models.StatusApproved, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.UpdateStatus(admin, sub.ID, models.StatusUnderReview, ""); err != nil {
		t.Fatalf("reopen without lock: %v", err)
	}

	// Locked policy: approved and rejected are final.
	locked, _ := newTestPCCService(t, PCCServiceOptions{LockTerminalStatuses: true})
	sub, err = locked.Create(testDealerUser(), validPCCInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := locked.UpdateStatus(admin, sub.ID, models.StatusRejected, ""); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err = locked.UpdateStatus(admin, sub.ID, models.StatusUnderReview, "")
	if _, ok := AsValidationErrors(err); !ok {
		t.Fatalf("reopen with lock: got %v, want ValidationErrors", err)
	}
}

func TestGetByReference(t *testing.T) {
	svc, _ := newTestPCCService(t, PCCServiceOptions{})

	sub, err := svc.Create(testDealerUser(), validPCCInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := svc.GetByReference("  " + strings.ToLower(sub.ReferenceNumber) + " ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.ID != sub.ID {
		t.Errorf("found id %q, want %q", found.ID, sub.ID)
	}
	if len(found.StatusHistory) != 1 {
		t.Errorf("history length = %d, want 1", len(found.StatusHistory))
	}

	if _, err := svc.GetByReference("PCC-IN-1999-0001"); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("unknown reference: got %v, want ErrSubmissionNotFound", err)
	}
}

func TestGetByDealerScoping(t *testing.T) {
	svc, _ := newTestPCCService(t, PCCServiceOptions{})

	first := testDealerUser()
	otherID := "dealer_002"
	second := testDealerUser()
	second.ID = "user_other"
	second.DealerID = &otherID

	if _, err := svc.Create(first, validPCCInput()); err != nil {
		t.Fatalf("create first: %v", err)
	}
	otherInput := validPCCInput()
	otherInput.DealerID = otherID
	if _, err := svc.Create(second, otherInput); err != nil {
		t.Fatalf("create second: %v", err)
	}

	mine, err := svc.GetByDealer("dealer_001")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("dealer_001 submissions = %d, want 1", len(mine))
	}
	all, err := svc.GetAll()
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all submissions = %d, want 2", len(all))
	}
}

func TestDashboardStats(t *testing.T) {
	svc, _ := newTestPCCService(t, PCCServiceOptions{})
	dealer := testDealerUser()
	admin := testAdminUser()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	svc.now = func() time.Time { return clock }

	var ids []string
	for i := 0; i < 3; i++ {
		clock = base.Add(time.Duration(i) * time.Hour)
		input := validPCCInput()
		if i == 2 {
			input.Subtopic = "electrical"
		}
		sub, err := svc.Create(dealer, input)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, sub.ID)
	}

	// Approve the first after two days, request more info on the second.
	clock = base.Add(48 * time.Hour)
	if _, err := svc.UpdateStatus(admin, ids[0], models.StatusApproved, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.UpdateStatus(admin, ids[1], models.StatusMoreInfoRequired, "Need photos"); err != nil {
		t.Fatalf("more info: %v", err)
	}

	stats, err := svc.DashboardStats("")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.ByStatus[models.StatusApproved] != 1 {
		t.Errorf("ByStatus[approved] = %d, want 1", stats.ByStatus[models.StatusApproved])
	}
	if stats.ByStatus[models.StatusSubmitted] != 1 {
		t.Errorf("ByStatus[submitted] = %d, want 1", stats.ByStatus[models.StatusSubmitted])
	}
	if stats.ByStatus[models.StatusRejected] != 0 {
		t.Errorf("ByStatus[rejected] = %d, want 0 (zero-filled)", stats.ByStatus[models.StatusRejected])
	}
	if stats.BySubtopic["engine"] != 2 || stats.BySubtopic["electrical"] != 1 {
		t.Errorf("BySubtopic = %v", stats.BySubtopic)
	}
	if want := 100.0 / 3.0; stats.ApprovalRate < want-0.01 || stats.ApprovalRate > want+0.01 {
		t.Errorf("ApprovalRate = %.2f, want %.2f", stats.ApprovalRate, want)
	}
	// One completed submission, created at base and closed 48h later.
	if stats.AverageTAT < 1.99 || stats.AverageTAT > 2.01 {
		t.Errorf("AverageTAT = %.2f, want 2 days", stats.AverageTAT)
	}
	if len(stats.RecentSubmissions) != 3 {
		t.Errorf("RecentSubmissions = %d, want 3", len(stats.RecentSubmissions))
	}
	if len(stats.MoreInfoQueue) != 1 || stats.MoreInfoQueue[0].ID != ids[1] {
		t.Errorf("MoreInfoQueue = %v", stats.MoreInfoQueue)
	}
}

func TestDashboardStatsDealerScope(t *testing.T) {
	svc, _ := newTestPCCService(t, PCCServiceOptions{})

	dealer := testDealerUser()
	otherID := "dealer_002"
	other := testDealerUser()
	other.ID = "user_other"
	other.DealerID = &otherID

	if _, err := svc.Create(dealer, validPCCInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	otherInput := validPCCInput()
	otherInput.DealerID = otherID
	if _, err := svc.Create(other, otherInput); err != nil {
		t.Fatalf("create other: %v", err)
	}

	stats, err := svc.DashboardStats("dealer_001")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("scoped Total = %d, want 1", stats.Total)
	}
}
