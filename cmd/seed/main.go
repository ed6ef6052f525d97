package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dealer-portal-api/config"
	"dealer-portal-api/models"
	"dealer-portal-api/services"
)

const seedCompleteKey = "seed_complete"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()
	db := config.DB

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
		log.Fatal("Failed to migrate database:", err)
	}

	done, err := models.GetConfigInt(db, seedCompleteKey)
	if err != nil {
		log.Fatal("Failed to read seed marker:", err)
	}
	if done == 1 {
		log.Println("Database already seeded, nothing to do")
		return
	}

	// Feature flag defaults
	audit := services.NewAuditService(db)
	if _, err := services.NewFeatureFlagService(db, audit); err != nil {
		log.Fatal("Failed to seed feature flags:", err)
	}

	if err := seed(db); err != nil {
		log.Fatal("Seeding failed:", err)
	}

	if err := models.SetConfigInt(db, seedCompleteKey, 1); err != nil {
		log.Fatal("Failed to write seed marker:", err)
	}
	log.Println("Seeding complete")
}

func seed(db *gorm.DB) error {
	now := time.Now()

	dealer := models.Dealer{
		ID:            "dealer_001",
		Code:          "DLR001",
		Name:          "Premium Motors Delhi",
		City:          "New Delhi",
		ContactPerson: "Rajesh Kumar",
		Email:         "rajesh.kumar@premiummotors.in",
		Phone:         "9876543210",
		IsActive:      true,
		CreatedAt:     now,
	}
	if err := db.Create(&dealer).Error; err != nil {
		return err
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	dealerHash, err := bcrypt.GenerateFromPassword([]byte("dealer123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	dealerID := dealer.ID
	dealerName := dealer.Name

	users := []models.User{
		{
			ID:           "user_superadmin",
			Email:        "superadmin@vw.in",
			EmployeeID:   "VW-SA-001",
			Name:         "System Administrator",
			Role:         models.RoleSuperAdmin,
			PasswordHash: string(adminHash),
			IsActive:     true,
			CreatedAt:    now,
		},
		{
			ID:           "user_admin",
			Email:        "admin@vw.in",
			EmployeeID:   "VW-AD-001",
			Name:         "Manufacturer Admin",
			Role:         models.RoleAdmin,
			PasswordHash: string(adminHash),
			IsActive:     true,
			CreatedAt:    now,
		},
		{
			ID:           "user_mt",
			Email:        "mt@premiummotors.in",
			EmployeeID:   "PM-MT-001",
			Name:         "Amit Singh",
			Role:         models.RoleMasterTechnician,
			DealerID:     &dealerID,
			DealerName:   &dealerName,
			PasswordHash: string(dealerHash),
			IsActive:     true,
			CreatedAt:    now,
		},
		{
			ID:           "user_sm",
			Email:        "sm@premiummotors.in",
			EmployeeID:   "PM-SM-001",
			Name:         "Priya Sharma",
			Role:         models.RoleServiceManager,
			DealerID:     &dealerID,
			DealerName:   &dealerName,
			PasswordHash: string(dealerHash),
			IsActive:     true,
			CreatedAt:    now,
		},
		{
			ID:           "user_sh",
			Email:        "sh@premiummotors.in",
			EmployeeID:   "PM-SH-001",
			Name:         "Vikram Patel",
			Role:         models.RoleServiceHead,
			DealerID:     &dealerID,
			DealerName:   &dealerName,
			PasswordHash: string(dealerHash),
			IsActive:     true,
			CreatedAt:    now,
		},
		{
			ID:           "user_wm",
			Email:        "wm@premiummotors.in",
			EmployeeID:   "PM-WM-001",
			Name:         "Neha Gupta",
			Role:         models.RoleWarrantyManager,
			DealerID:     &dealerID,
			DealerName:   &dealerName,
			PasswordHash: string(dealerHash),
			IsActive:     true,
			CreatedAt:    now,
		},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			return err
		}
	}

	if err := seedSubmissions(db); err != nil {
		return err
	}

	// Sample submissions consumed sequences 1001..1003 of 2024; record that
	// so freshly created 2024 references would continue from 1004.
	return db.Create(&models.PCCReferenceSequence{Year: 2024, LastSequence: 1003}).Error
}

func seedSubmissions(db *gorm.DB) error {
	parse := func(s string) time.Time {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			log.Fatal("Bad seed timestamp:", err)
		}
		return t
	}
	day := func(s string) time.Time {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			log.Fatal("Bad seed date:", err)
		}
		return t
	}
	notes := "Please provide photos of the damaged component"
	escalation := "Recurring issue with infotainment system"

	submissions := []models.PCCSubmission{
		{
			ID:                  "pcc_001",
			ReferenceNumber:     "PCC-IN-2024-1001",
			Status:              models.StatusApproved,
			DealerID:            "dealer_001",
			DealerCode:          "DLR001",
			DealerName:          "Premium Motors Delhi",
			ContactPerson:       "Rajesh Kumar",
			Email:               "rajesh.kumar@premiummotors.in",
			Brand:               models.BrandVolkswagen,
			Model:               "Virtus",
			VIN:                 "WVWZZZ3CZWE123456",
			RegistrationNo:      "DL01AB1234",
			ProductionDate:      day("2023-06-15"),
			ConditionType:       models.ConditionWarrantyCases,
			WarrantyPeriod:      models.WarrantyPeriodWithin,
			NumberOfClaims:      5,
			FaultCode:           "P0299",
			Topic:               models.TopicDealerPCC,
			Subtopic:            "engine",
			EngineCode:          "CZDA",
			GearboxCode:         "DQ200",
			Mileage:             25000,
			RepairDate:          day("2024-01-10"),
			PartDescription:     "Turbocharger Assembly",
			DamagePartNumber:    "04E145721B",
			DeclarationAccepted: true,
			CreatedBy:           "user_mt",
			CreatedAt:           parse("2024-01-10T10:00:00Z"),
			UpdatedAt:           parse("2024-01-12T14:30:00Z"),
			StatusHistory: []models.PCCStatusHistory{
				{Status: models.StatusSubmitted, ChangedBy: "user_mt", ChangedAt: parse("2024-01-10T10:00:00Z")},
				{Status: models.StatusUnderReview, ChangedBy: "user_admin", ChangedAt: parse("2024-01-11T09:00:00Z")},
				{Status: models.StatusApproved, ChangedBy: "user_admin", ChangedAt: parse("2024-01-12T14:30:00Z")},
			},
		},
		{
			ID:                  "pcc_002",
			ReferenceNumber:     "PCC-IN-2024-1002",
			Status:              models.StatusUnderReview,
			DealerID:            "dealer_001",
			DealerCode:          "DLR001",
			DealerName:          "Premium Motors Delhi",
			ContactPerson:       "Rajesh Kumar",
			Email:               "rajesh.kumar@premiummotors.in",
			Brand:               models.BrandSkoda,
			Model:               "Slavia",
			VIN:                 "TMBJC9NE9N0123456",
			RegistrationNo:      "DL02CD5678",
			ProductionDate:      day("2023-08-20"),
			ConditionType:       models.ConditionRepeatRepairs,
			WarrantyPeriod:      models.WarrantyPeriodAny,
			NumberOfClaims:      3,
			FaultCode:           "U0428",
			NumberOfRepairs:     3,
			Topic:               models.TopicDealerPCC,
			Subtopic:            "electrical",
			EscalatedToBrand:    true,
			EscalationNotes:     &escalation,
			EngineCode:          "CWVA",
			GearboxCode:         "MQ250",
			Mileage:             15000,
			RepairDate:          day("2024-01-15"),
			PartDescription:     "Infotainment Unit",
			DamagePartNumber:    "6V0035874",
			RepeatedRepair:      true,
			DeclarationAccepted: true,
			CreatedBy:           "user_sm",
			CreatedAt:           parse("2024-01-15T11:30:00Z"),
			UpdatedAt:           parse("2024-01-16T09:00:00Z"),
			StatusHistory: []models.PCCStatusHistory{
				{Status: models.StatusSubmitted, ChangedBy: "user_sm", ChangedAt: parse("2024-01-15T11:30:00Z")},
				{Status: models.StatusUnderReview, ChangedBy: "user_admin", ChangedAt: parse("2024-01-16T09:00:00Z")},
			},
		},
		{
			ID:                  "pcc_003",
			ReferenceNumber:     "PCC-IN-2024-1003",
			Status:              models.StatusMoreInfoRequired,
			DealerID:            "dealer_001",
			DealerCode:          "DLR001",
			DealerName:          "Premium Motors Delhi",
			ContactPerson:       "Rajesh Kumar",
			Email:               "rajesh.kumar@premiummotors.in",
			Brand:               models.BrandVolkswagen,
			Model:               "Taigun",
			VIN:                 "WVWZZZ5NZXE654321",
			RegistrationNo:      "DL03EF9012",
			ProductionDate:      day("2023-04-10"),
			ConditionType:       models.ConditionBreakdownCases,
			WarrantyPeriod:      models.WarrantyPeriodAny,
			NumberOfClaims:      3,
			FaultCode:           "C1234",
			Topic:               models.TopicLongTermPCC,
			Subtopic:            "suspension",
			EngineCode:          "DPCA",
			GearboxCode:         "DQ381",
			Mileage:             45000,
			RepairDate:          day("2024-01-18"),
			PartDescription:     "Front Shock Absorber",
			DamagePartNumber:    "2GS413031A",
			Breakdown:           true,
			DeclarationAccepted: true,
			CreatedBy:           "user_wm",
			CreatedAt:           parse("2024-01-18T14:00:00Z"),
			UpdatedAt:           parse("2024-01-19T10:00:00Z"),
			StatusHistory: []models.PCCStatusHistory{
				{Status: models.StatusSubmitted, ChangedBy: "user_wm", ChangedAt: parse("2024-01-18T14:00:00Z")},
				{Status: models.StatusMoreInfoRequired, ChangedBy: "user_admin", ChangedAt: parse("2024-01-19T10:00:00Z"), Notes: &notes},
			},
		},
	}
	for i := range submissions {
		if err := db.Create(&submissions[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
