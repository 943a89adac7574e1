package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Werneck0live/cadastro-empresas-api/internal/models"
)

const companiesCounter = "companies"

// CompanyRepository guarda as empresas no MongoDB. Transações exigem replica set.
type CompanyRepository struct {
	client   *mongo.Client
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewCompanyRepository(db *mongo.Database) *CompanyRepository {
	return &CompanyRepository{
		client:   db.Client(),
		coll:     db.Collection("companies"),
		counters: db.Collection("counters"),
	}
}

func (r *CompanyRepository) EnsureIndexes(ctx context.Context) error {
	uniq := mongo.IndexModel{
		Keys: bson.D{{Key: "cnpj", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName("uniq_cnpj"),
	}
	_, err := r.coll.Indexes().CreateOne(ctx, uniq)
	if err != nil {
		// Se já existir com outra opção, tenta dropar e recriar
		var ce mongo.CommandError
		if !errors.As(err, &ce) || ce.Code != 85 { // IndexOptionsConflict
			return err
		}
		if _, dropErr := r.coll.Indexes().DropOne(ctx, "uniq_cnpj"); dropErr != nil {
			return fmt.Errorf("drop index uniq_cnpj: %w", dropErr)
		}
		if _, err := r.coll.Indexes().CreateOne(ctx, uniq); err != nil {
			return fmt.Errorf("create index uniq_cnpj: %w", err)
		}
	}

	_, err = r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "deleted_at", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetName("idx_active_name"),
	})
	return err
}

func (r *CompanyRepository) ListActive(ctx context.Context) ([]models.Company, error) {
	// {deleted_at: null} casa com null e com campo ausente
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"deleted_at": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	list := []models.Company{}
	for cur.Next(ctx) {
		var c models.Company
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, cur.Err()
}

func (r *CompanyRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	// WithTransaction faz abort em qualquer erro de fn e pode repetir fn em erros transitórios
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, mongoTx{r: r})
	})
	return err
}

type mongoTx struct {
	r *CompanyRepository
}

func (t mongoTx) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	var c models.Company
	err := t.r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t mongoTx) ExistsByCNPJ(ctx context.Context, cnpj string) (bool, error) {
	n, err := t.r.coll.CountDocuments(ctx, bson.M{"cnpj": cnpj}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t mongoTx) Insert(ctx context.Context, c *models.Company) error {
	id, err := t.nextID(ctx)
	if err != nil {
		return err
	}
	c.ID = id
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	if _, err := t.r.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCNPJ
		}
		return err
	}
	return nil
}

func (t mongoTx) Update(ctx context.Context, c *models.Company) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := t.r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCNPJ
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// nextID gera ids inteiros sequenciais a partir da coleção counters.
func (t mongoTx) nextID(ctx context.Context) (int64, error) {
	var seq struct {
		Value int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := t.r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": companiesCounter},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&seq)
	if err != nil {
		return 0, fmt.Errorf("next company id: %w", err)
	}
	return seq.Value, nil
}
