package db

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-loyalty/internal/config"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

var seedServices = []models.Service{
	{Name: "Coupe", Description: "Coupe aux ciseaux ou tondeuse", Price: 10, DurationMin: 30},
	{Name: "Barbe", Description: "Taille de barbe", Price: 7, DurationMin: 30},
	{Name: "Coupe (cheveux courts)", Description: "Coupe cheveux courts", Price: 8, DurationMin: 30},
	{Name: "Barbe (courte)", Description: "Taille barbe courte", Price: 5, DurationMin: 30},
	{Name: "Coupe + Barbe avec machine (Zéro)", Description: "Pack complet tondeuse", Price: 10, DurationMin: 45},
	{Name: "Coupe + Barbe Dégradé", Description: "Pack dégradé précis", Price: 13, DurationMin: 45},
	{Name: "Coupe + Barbe Dégradé + Fixation", Description: "Pack complet avec finition", Price: 15, DurationMin: 45},
	{Name: "Coupe + Barbe + Brushing", Description: "Style complet", Price: 20, DurationMin: 45},
	{Name: "Coupe + Barbe + Masque Noir", Description: "Soin complet", Price: 20, DurationMin: 45},
	{Name: "Patchs pour les yeux", Description: "Soin contour des yeux", Price: 5, DurationMin: 15},
	{Name: "Coupe d'enfant (jusqu'à 5 ans)", Description: "Coupe junior", Price: 7, DurationMin: 30},
	{Name: "Brushing", Description: "Mise en forme", Price: 7, DurationMin: 15},
	{Name: "Masque Noir", Description: "Soin purifiant", Price: 8, DurationMin: 15},
	{Name: "Épilation à la cire", Description: "Nettoyage précis", Price: 3, DurationMin: 15},
	{Name: "Protéine", Description: "Traitement capillaire", Price: 80, DurationMin: 90},
}

var seedBarbers = []models.Barber{
	{Name: "Aladin", Speciality: "Barbier", Description: "Spécialiste en coupes modernes et dégradés de précision."},
	{Name: "Hamouda", Speciality: "Barbier", Description: "Expert en taille de barbe traditionnelle et soins du visage."},
	{Name: "Ahmed", Speciality: "Barbier", Description: "Maîtrise des coupes classiques et des styles vintage."},
}

var seedProducts = []models.Product{
	{Name: "LORENTI 07 Hair Wax Spider Effect 150ml", Description: "Cire à finition mate.", Price: 15, Category: "wax"},
	{Name: "LORENTI HAIR WAX 06 PRO TOUCH 150ml", Description: "Cire professionnelle, tenue longue durée.", Price: 15, Category: "wax"},
	{Name: "Elegance Hair Styling Powder", Description: "Poudre volumisante retravaillable.", Price: 20, Category: "powder"},
	{Name: "Elegance Gel Hair Wax", Description: "Gel-cire, fixation extra forte.", Price: 15, Category: "gel"},
	{Name: "Huile de conditionnement pour cheveux et barbes E Elegance", Description: "Hydratation cheveux et barbe.", Price: 20, Category: "oil"},
}

// Seed inserts the admin account and the default catalog. Existing rows
// are left untouched.
func Seed(ctx context.Context, db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	db = db.WithContext(ctx)

	if err := seedAdmin(db, cfg, log); err != nil {
		return err
	}

	for _, s := range seedServices {
		s.Active = true
		if err := db.Where(models.Service{Name: s.Name}).FirstOrCreate(&s).Error; err != nil {
			return fmt.Errorf("seed service %q: %w", s.Name, err)
		}
	}

	var barbers int64
	if err := db.Model(&models.Barber{}).Count(&barbers).Error; err != nil {
		return fmt.Errorf("count barbers: %w", err)
	}
	if barbers == 0 {
		list := append([]models.Barber(nil), seedBarbers...)
		for i := range list {
			list[i].Active = true
		}
		if err := db.Create(&list).Error; err != nil {
			return fmt.Errorf("seed barbers: %w", err)
		}
	}

	var products int64
	if err := db.Model(&models.Product{}).Count(&products).Error; err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if products == 0 {
		list := append([]models.Product(nil), seedProducts...)
		for i := range list {
			list[i].Active = true
		}
		if err := db.Create(&list).Error; err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
	}

	return nil
}

func seedAdmin(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	if cfg.SeedAdminUsername == "" || cfg.SeedAdminPassword == "" {
		log.Warn("admin seed skipped: SEED_ADMIN_PASSWORD not set")
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", cfg.SeedAdminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Username:     cfg.SeedAdminUsername,
		PasswordHash: string(hash),
		Name:         "Super Admin",
		Email:        "superadmin@barber.com",
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	log.Info("admin account seeded", zap.String("username", admin.Username))
	return nil
}
