package repos

import (
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	applog "marketplace/internal/log"
)

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.Base().Info("seed: inserting demo categories/sellers/products")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO categories(id,label,slug,description) VALUES
	  ('c-fashion','Mode & pagnes','mode-pagnes','Tissus wax, bazin et prêt-à-porter'),
	  ('c-food','Épicerie','epicerie','Produits locaux et épices'),
	  ('c-home','Maison','maison',NULL),
	  ('c-tech','High-tech','high-tech','Téléphones et accessoires')`)

	tx.MustExec(`INSERT INTO sellers(id,name,slug) VALUES
	  ('s-adjoua','Chez Adjoua','chez-adjoua'),
	  ('s-koffi','Koffi Électronique','koffi-electronique')`)

	tx.MustExec(`INSERT INTO products(id,seller_id,category_id,title,description,images_json,price,original_price,available,quantity) VALUES
	  ('p-wax-01','s-adjoua','c-fashion','Pagne wax 6 yards','Coton imprimé, motif hirondelles',
	     '["https://cdn.example.test/images/p-wax-01/1.jpg","https://cdn.example.test/images/p-wax-01/2.jpg"]',12000,15000,1,20),
	  ('p-attieke-01','s-adjoua','c-food','Attiéké 1kg','Semoule de manioc fraîche',
	     '["https://cdn.example.test/images/p-attieke-01/1.jpg","https://cdn.example.test/images/p-attieke-01/2.jpg"]',1500,NULL,1,50),
	  ('p-phone-01','s-koffi','c-tech','Téléphone double SIM','Écran 6.5 pouces, 64 Go',
	     '["https://cdn.example.test/images/p-phone-01/1.jpg","https://cdn.example.test/images/p-phone-01/2.jpg","https://cdn.example.test/images/p-phone-01/3.jpg"]',49990,NULL,1,5)`)

	return tx.Commit()
}

// seedUsers ensures one account per role exists (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) (u, error) {
		h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}, err
	}

	var users []u
	for _, x := range [][4]string{
		{"u-awa", "awa@marketplace.test", "Awa", "USER"},
		{"u-owner", "owner@marketplace.test", "Owner", "OWNER"},
		{"u-admin", "admin@marketplace.test", "Admin", "ADMIN"},
	} {
		usr, err := mk(x[0], x[1], x[2], x[3], "Passw0rd!")
		if err != nil {
			return err
		}
		users = append(users, usr)
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
