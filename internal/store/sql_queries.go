package store

const (
	findClientGroupForUpdate = `SELECT id, tenant_id, user_id, client_version, client_view_version, created_at, updated_at
    FROM replicache_client_groups
    WHERE id = $1 AND tenant_id = $2
    FOR UPDATE;`

	upsertClientGroup = `INSERT INTO replicache_client_groups (id, tenant_id, user_id, client_version, client_view_version)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (id, tenant_id) DO UPDATE SET
        client_version = EXCLUDED.client_version,
        client_view_version = EXCLUDED.client_view_version,
        updated_at = NOW()
    RETURNING id, tenant_id, user_id, client_version, client_view_version, created_at, updated_at;`

	findClientForUpdate = `SELECT id, tenant_id, client_group_id, last_mutation_id, version, created_at, updated_at
    FROM replicache_clients
    WHERE id = $1 AND tenant_id = $2
    FOR UPDATE;`

	findClientsSinceVersion = `SELECT id, tenant_id, client_group_id, last_mutation_id, version, created_at, updated_at
    FROM replicache_clients
    WHERE version > $1 AND client_group_id = $2 AND tenant_id = $3;`

	upsertClient = `INSERT INTO replicache_clients (id, tenant_id, client_group_id, last_mutation_id, version)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (id, tenant_id) DO UPDATE SET
        last_mutation_id = EXCLUDED.last_mutation_id,
        version = EXCLUDED.version,
        updated_at = NOW()
    RETURNING id, tenant_id, client_group_id, last_mutation_id, version, created_at, updated_at;`

	findClientView = `SELECT client_group_id, version, client_version, tenant_id
    FROM replicache_client_views
    WHERE client_group_id = $1 AND version = $2 AND tenant_id = $3;`

	findMaxClientViewVersion = `SELECT COALESCE(MAX(version), 0)
    FROM replicache_client_views
    WHERE client_group_id = $1 AND tenant_id = $2;`

	upsertClientView = `INSERT INTO replicache_client_views (client_group_id, version, client_version, tenant_id)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (client_group_id, version, tenant_id) DO UPDATE SET
        client_version = EXCLUDED.client_version
    RETURNING client_group_id, version, client_version, tenant_id;`

	findExpiredClientGroups = `SELECT id, tenant_id
    FROM replicache_client_groups
    WHERE updated_at < $1
    ORDER BY updated_at ASC
    LIMIT $2;`

	deleteClientViewEntriesByGroup = `DELETE FROM replicache_client_view_entries
    WHERE client_group_id = $1 AND tenant_id = $2;`

	deleteClientViewsByGroup = `DELETE FROM replicache_client_views
    WHERE client_group_id = $1 AND tenant_id = $2;`

	deleteClientsByGroup = `DELETE FROM replicache_clients
    WHERE client_group_id = $1 AND tenant_id = $2;`

	deleteClientGroup = `DELETE FROM replicache_client_groups
    WHERE id = $1 AND tenant_id = $2;`
)
