package services

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dealer-portal-api/models"
)

// newTestDB opens an isolated in-memory database per test. The pool is
// pinned to a single connection because each sqlite memory connection is
// its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.Dealer{},
		&models.PCCSubmission{},
		&models.PCCStatusHistory{},
		&models.PCCReferenceSequence{},
		&models.FeatureFlag{},
		&models.SystemConfig{},
		&models.AuditLog{},
		&models.AccessRequest{},
		&models.OTPChallenge{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testDealerUser() *models.User {
	dealerID := "dealer_001"
	dealerName := "Premium Motors Delhi"
	return &models.User{
		ID:         "user_mt",
		Email:      "mt@premiummotors.in",
		Name:       "Amit Singh",
		Role:       models.RoleMasterTechnician,
		DealerID:   &dealerID,
		DealerName: &dealerName,
		IsActive:   true,
	}
}

func testAdminUser() *models.User {
	return &models.User{
		ID:       "user_admin",
		Email:    "admin@vw.in",
		Name:     "Manufacturer Admin",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
}

func testSuperAdminUser() *models.User {
	return &models.User{
		ID:       "user_superadmin",
		Email:    "superadmin@vw.in",
		Name:     "System Administrator",
		Role:     models.RoleSuperAdmin,
		IsActive: true,
	}
}

// validPCCInput returns an input that passes every validation rule for the
// warranty_cases condition type.
func validPCCInput() PCCInput {
	return PCCInput{
		DealerID:      "dealer_001",
		DealerCode:    "DLR001",
		DealerName:    "Premium Motors Delhi",
		ContactPerson: "Rajesh Kumar",
		Email:         "rajesh.kumar@premiummotors.in",

		Brand:          models.BrandVolkswagen,
		Model:          "Virtus",
		VIN:            "WVWZZZ3CZWE123456",
		RegistrationNo: "DL01AB1234",
		ProductionDate: time.Now().AddDate(-1, 0, 0),

		ConditionType:  models.ConditionWarrantyCases,
		NumberOfClaims: 5,
		FaultCode:      "P0299",

		Topic:    models.TopicDealerPCC,
		Subtopic: "engine",

		EngineCode:  "CZDA",
		GearboxCode: "DQ200",
		Mileage:     25000,
		RepairDate:  time.Now().AddDate(0, 0, -7),

		PartDescription:  "Turbocharger Assembly",
		DamagePartNumber: "04E145721B",

		DeclarationAccepted: true,
	}
}
